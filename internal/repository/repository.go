package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicate     = RepositoryError("duplicate key")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrDeleteFailed  = RepositoryError("delete failed")
	ErrMissingFields = RepositoryError("required fields missing")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProfileRepository stores one intake profile per user and mode.
type ProfileRepository interface {
	// Upsert replaces the data of the (user, mode) profile, creating it if needed.
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByUserAndMode(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error)
	Delete(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) error
}

// GoalFilter narrows ListByUser. Zero values match everything.
type GoalFilter struct {
	Mode   domain.Mode
	Status domain.GoalStatus
}

// GoalRepository defines the interface for interacting with goal data.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter GoalFilter) ([]domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error // Ensure the user owns the goal
}

// ConversationRepository defines the interface for coach conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error)
	// ListByUser returns conversations without their messages, newest first.
	// An empty mode matches all modes.
	ListByUser(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error)
	AppendMessages(ctx context.Context, id primitive.ObjectID, msgs ...domain.Message) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// PlanExportRepository stores metadata of plans exported to object storage.
type PlanExportRepository interface {
	Create(ctx context.Context, export *domain.PlanExport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanExport, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}
