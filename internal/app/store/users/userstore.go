// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stackmentor/stackmentor/internal/app/system/normalize"
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
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "mentor" or "mentee"`)
)

// userDoc is the persisted shape of a user. Skills and interests are
// []string in the domain but a single ", "-joined string on disk; the
// conversion lives here and nowhere else.
type userDoc struct {
	models.User `bson:",inline"`
	Skills      string `bson:"skills,omitempty"`
	Interests   string `bson:"interests,omitempty"`
}

func toDoc(u models.User) userDoc {
	return userDoc{
		User:      u,
		Skills:    joinList(u.Skills),
		Interests: joinList(u.Interests),
	}
}

func (d userDoc) toUser() models.User {
	u := d.User
	u.Skills = splitList(d.Skills)
	u.Interests = splitList(d.Interests)
	return u
}

func joinList(vals []string) string {
	kept := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Create inserts a new user after normalizing fields. Accounts start
// unverified; the caller hashes the password before calling.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Role = normalize.Role(u.Role)
	u.IndustryCI = normalize.Industry(u.Industry)
	u.IsVerified = false
	u.CreatedAt = time.Now().UTC()

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.Position == "" {
		u.Position = models.PositionMember
	}
	if !u.DateOfBirth.IsZero() {
		u.Age = u.CalculateAge(time.Now().UTC())
	}

	if _, err := s.c.InsertOne(ctx, toDoc(u)); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var d userDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	u := d.toUser()
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var d userDoc
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&d); err != nil {
		return nil, err
	}
	u := d.toUser()
	return &u, nil
}

// MarkVerified flips the account to verified. Returns
// mongo.ErrNoDocuments if no such user exists.
func (s *Store) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_verified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Search executes a composed directory predicate and returns the
// matching users in natural collection order.
func (s *Store) Search(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toUser())
	}
	return out, cur.Err()
}

// Exists reports whether a user with the given id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
