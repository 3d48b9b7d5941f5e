// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stackmentor/stackmentor/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

var (
	errEmptyName   = errors.New("group name is required")
	errNameTooLong = errors.New("group name exceeds the maximum length")
)

// Create inserts a new group. The caller supplies Name, Description and
// CreatedBy; everything else is assigned here. Runs inside whatever
// session the ctx carries, so it participates in transactions.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return models.Group{}, errEmptyName
	}
	if len([]rune(g.Name)) > models.MaxGroupNameLen {
		return models.Group{}, errNameTooLong
	}

	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByID loads a group by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Exists reports whether a group with the given id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
