package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalStatus type for goal lifecycle
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

// Valid reports whether s is a known goal status.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalArchived:
		return true
	}
	return false
}

// Goal is something a user is working towards within one mode.
type Goal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Mode        Mode               `bson:"mode" json:"mode"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      GoalStatus         `bson:"status" json:"status"`
	Progress    int                `bson:"progress" json:"progress"`                       // 0-100
	TargetDate  *time.Time         `bson:"targetDate,omitempty" json:"targetDate,omitempty"` // Optional (pointer for nullability)
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
