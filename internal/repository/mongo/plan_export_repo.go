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

const planExportCollectionName = "plan_exports"

// mongoPlanExportRepository implements repository.PlanExportRepository
type mongoPlanExportRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanExportRepository creates a new plan export repository backed by MongoDB.
func NewMongoPlanExportRepository(db *mongo.Database) repository.PlanExportRepository {
	return &mongoPlanExportRepository{
		collection: db.Collection(planExportCollectionName),
	}
}

// Create inserts export metadata. The object itself must already be in storage.
func (r *mongoPlanExportRepository) Create(ctx context.Context, export *domain.PlanExport) (primitive.ObjectID, error) {
	if export.UserID.IsZero() || export.S3ObjectKey == "" {
		return primitive.NilObjectID, repository.ErrMissingFields
	}

	if export.ID.IsZero() {
		export.ID = primitive.NewObjectID()
	}
	export.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, export); err != nil {
		return primitive.NilObjectID, err
	}
	return export.ID, nil
}

func (r *mongoPlanExportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanExport, error) {
	var export domain.PlanExport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&export)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &export, nil
}

func (r *mongoPlanExportRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exports := []domain.PlanExport{}
	if err = cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

func (r *mongoPlanExportRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanExportIndexes creates necessary indexes for the plan_exports collection.
func EnsurePlanExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
