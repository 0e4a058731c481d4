package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanExport stores metadata about a fitness plan a user saved for download.
// The plan JSON itself resides in S3.
type PlanExport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"` // Provenance of the exported plan (llm, llm_direct, local_generation)
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`                     // Internal use only
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"` // Object size in bytes
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
