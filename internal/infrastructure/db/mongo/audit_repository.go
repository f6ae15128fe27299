package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkwell/content-platform/internal/core/domain"
)

const auditCollection = "audit_log"

// AuditRepository appends security events. Documents carry an expires_at
// field derived from the event's retention; a TTL index on that field prunes
// them without an application-side job.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id,omitempty"`
	Action     string             `bson:"action"`
	Entity     string             `bson:"entity,omitempty"`
	Metadata   map[string]string  `bson:"metadata,omitempty"`
	Importance string             `bson:"importance"`
	CreatedAt  int64              `bson:"created_at"`
	ExpiresAt  time.Time          `bson:"expires_at"`
}

func (r *AuditRepository) Append(ctx context.Context, event domain.AuditEvent) error {
	created := event.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	retention := event.RetentionDays
	if retention <= 0 {
		retention = 90
	}

	doc := mongoAuditEvent{
		UserID:     event.UserID,
		Action:     event.Action,
		Entity:     event.Entity,
		Metadata:   event.Metadata,
		Importance: string(event.Importance),
		CreatedAt:  created.Unix(),
		ExpiresAt:  created.AddDate(0, 0, retention),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
