package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

const (
	authEventsCollection = "auth_events"
	// Audit records are pruned by a TTL index after this long.
	authEventsRetention = 90 * 24 * time.Hour
)

// AuditRepository appends auth events to the audit collection.
type AuditRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewAuditRepository(db *mongo.Database, timeout time.Duration) *AuditRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AuditRepository{coll: db.Collection(authEventsCollection), timeout: timeout}
}

type authEventDoc struct {
	Kind       string    `bson:"kind"`
	Email      string    `bson:"email,omitempty"`
	UserID     string    `bson:"user_id,omitempty"`
	Outcome    string    `bson:"outcome"`
	OccurredAt time.Time `bson:"occurred_at"`
}

// InsertEvent persists a single event.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := authEventDoc{
		Kind:       string(event.Kind),
		Email:      event.Email,
		UserID:     event.UserID,
		Outcome:    event.Outcome,
		OccurredAt: event.OccurredAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes creates lookup and retention indexes on the audit collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(authEventsRetention.Seconds())),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	return nil
}
