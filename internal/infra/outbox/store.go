package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "staymarket/internal/app/outbox"
)

const collectionName = "outbox_events"

// Event lifecycle: NEW -> CLAIMED -> SENT, with FAILED feeding back into the
// claim query once its next_attempt_at passes.
const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

// Store persists staged events in Mongo. Handlers append inside the request
// transaction; the dispatcher worker claims and publishes asynchronously,
// which is why Flush is a no-op here.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	col := db.Collection(collectionName)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}},
	})
	return &Store{col: col}
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	_, err := s.col.InsertOne(ctx, bson.M{
		"_id":             record.ID,
		"name":            record.Name,
		"payload":         record.Payload,
		"occurred_at":     record.OccurredAt,
		"aggregate":       record.Aggregate,
		"headers":         record.Headers,
		"state":           stateNew,
		"attempts":        0,
		"next_attempt_at": now,
		"created_at":      now,
	})
	return err
}

func (s *Store) Flush(context.Context) error { return nil }

type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by"`
	ClaimedAt   time.Time         `bson:"claimed_at"`
	SentAt      time.Time         `bson:"sent_at"`
	LastError   string            `bson:"last_error"`
}

// Claim atomically takes ownership of one due event. The findAndModify
// keeps concurrent workers from double-publishing the same record.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{
			"state":           bson.M{"$in": bson.A{stateNew, stateFailed}},
			"next_attempt_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": stateSent, "sent_at": time.Now().UTC()},
	})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, cause string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": stateFailed, "next_attempt_at": next, "last_error": cause},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}
