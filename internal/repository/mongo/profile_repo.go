package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/repository"
)

const profileCollectionName = "profiles"

type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new profile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Upsert replaces the data of the profile for (UserID, Mode). The stored
// document is written back into profile, including its ID and timestamps.
func (r *mongoProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if profile.UserID.IsZero() || profile.Mode == "" {
		return repository.ErrMissingFields
	}

	now := time.Now().UTC()
	filter := bson.M{"userId": profile.UserID, "mode": profile.Mode}
	update := bson.M{
		"$set": bson.M{
			"data":      profile.Data,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"userId":    profile.UserID,
			"mode":      profile.Mode,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Profile
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return err
	}
	*profile = stored
	return nil
}

func (r *mongoProfileRepository) GetByUserAndMode(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "mode": mode}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "mode", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.Profile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *mongoProfileRepository) Delete(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "mode": mode})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProfileIndexes enforces one profile per user and mode.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "mode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
