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

const conversationCollectionName = "conversations"

type mongoConversationRepository struct {
	collection *mongo.Collection
}

func NewMongoConversationRepository(db *mongo.Database) repository.ConversationRepository {
	return &mongoConversationRepository{
		collection: db.Collection(conversationCollectionName),
	}
}

func (r *mongoConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (primitive.ObjectID, error) {
	if conv.UserID.IsZero() || conv.Mode == "" {
		return primitive.NilObjectID, repository.ErrMissingFields
	}
	if conv.Messages == nil {
		conv.Messages = []domain.Message{}
	}

	conv.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, conv); err != nil {
		return primitive.NilObjectID, err
	}
	return conv.ID, nil
}

func (r *mongoConversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListByUser leaves out the message history; fetch a single conversation
// to read it.
func (r *mongoConversationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error) {
	filter := bson.M{"userId": userID}
	if mode != "" {
		filter["mode"] = mode
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"messages": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	convs := []domain.Conversation{}
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// AppendMessages pushes msgs onto the end of the conversation.
func (r *mongoConversationRepository) AppendMessages(ctx context.Context, id primitive.ObjectID, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": msgs}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoConversationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureConversationIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "mode", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	return err
}
