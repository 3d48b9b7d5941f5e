// internal/app/store/emailverify/store.go
package emailverify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultExpiry is how long a verification link stays valid.
const DefaultExpiry = 24 * time.Hour

// ErrNotFound is returned when a verification token is unknown, already
// consumed, or expired.
var ErrNotFound = errors.New("verification not found or expired")

// Verification is a pending email verification. Expired records are
// reaped by the TTL index on expires_at.
type Verification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Token     string             `bson:"token"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. If expiry is 0 or negative, DefaultExpiry is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("email_verifications"), expiry: expiry}
}

// Create issues a fresh verification token for the user and returns it.
// Any prior pending verifications for the same user are superseded and
// removed.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	v := Verification{
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return "", err
	}
	return v.Token, nil
}

// Consume redeems a token exactly once: it atomically removes the
// record and returns its user id. A second call with the same token,
// or a call past expiry, returns ErrNotFound.
func (s *Store) Consume(ctx context.Context, token string) (primitive.ObjectID, error) {
	filter := bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	var v Verification
	if err := s.c.FindOneAndDelete(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, ErrNotFound
		}
		return primitive.NilObjectID, err
	}
	return v.UserID, nil
}
