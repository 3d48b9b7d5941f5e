// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/stackmentor/stackmentor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

var (
	// ErrDuplicateMembership is returned when the (group, user) pair already has a membership.
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	errBadRole             = errors.New(`role must be "admin" or "member"`)
)

// Add creates a membership document. JoinedAt is assigned here, never
// by the caller. The unique (group_id, user_id) index is the
// authoritative guard: a duplicate insert surfaces as
// ErrDuplicateMembership no matter how the races fall.
func (s *Store) Add(ctx context.Context, groupID, userID primitive.ObjectID, role string) (models.GroupMember, error) {
	if !models.IsValidGroupRole(role) {
		return models.GroupMember{}, errBadRole
	}

	m := models.GroupMember{
		ID:       primitive.NewObjectID(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMember{}, ErrDuplicateMembership
		}
		return models.GroupMember{}, err
	}
	return m, nil
}

// Remove deletes the membership document for (groupID, userID). Returns
// mongo.ErrNoDocuments if no such membership existed.
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Exists reports whether (groupID, userID) has a membership.
func (s *Store) Exists(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByGroup returns the number of members in a group.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// ResolvedMember pairs a membership with the member's user record.
type ResolvedMember struct {
	User     models.User `bson:"user"`
	Role     string      `bson:"role"`
	JoinedAt time.Time   `bson:"joined_at"`
}

// ListResolvedByGroup returns each membership joined with its user
// document. Membership rows whose user no longer exists are dropped by
// the unwind. Results come back in natural collection order; callers
// wanting a particular order sort for themselves.
func (s *Store) ListResolvedByGroup(ctx context.Context, groupID primitive.ObjectID) ([]ResolvedMember, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"group_id": groupID}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$project", Value: bson.M{"user": "$user", "role": 1, "joined_at": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ResolvedMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
