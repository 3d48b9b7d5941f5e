// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/stackmentor/stackmentor/internal/app/system/normalize"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a verified user with the given name and role.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, first, last, email, role string) models.User {
	f.t.Helper()

	u := models.User{
		ID:         primitive.NewObjectID(),
		Email:      normalize.Email(email),
		FirstName:  first,
		LastName:   last,
		Role:       normalize.Role(role),
		Position:   models.PositionMember,
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert test user: %v", err)
	}
	return u
}

// CreateGroup inserts a group owned by createdBy.
// Returns the created group with its generated ID.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, createdBy primitive.ObjectID) models.Group {
	f.t.Helper()

	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("insert test group: %v", err)
	}
	return g
}

// CreateMembership inserts a membership row for (groupID, userID).
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID, role string) models.GroupMember {
	f.t.Helper()

	m := models.GroupMember{
		ID:       primitive.NewObjectID(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("insert test membership: %v", err)
	}
	return m
}
