// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mentorship roles. Persisted lowercase so equality filters stay
// case-insensitive without per-query folding.
const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

// Platform-wide positions (distinct from the per-group member role).
const (
	PositionAdmin     = "admin"
	PositionModerator = "moderator"
	PositionMember    = "member"
)

// IsValidRole checks if a value is a valid mentorship role.
func IsValidRole(role string) bool {
	return role == RoleMentor || role == RoleMentee
}

// User represents a registered account with its mentorship profile.
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the group_members collection to discover a user's groups.
//   - Skills and Interests are ordered string sequences in the domain;
//     the persistence layer stores them as a single ", "-joined string
//     and splits/joins at the mapping edge.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	DateOfBirth  time.Time          `bson:"date_of_birth" json:"date_of_birth"`
	City         string             `bson:"city" json:"city"`
	State        string             `bson:"state" json:"state"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Age          int                `bson:"age" json:"age"`

	ProfilePictureURL string `bson:"profile_picture_url,omitempty" json:"profile_picture_url,omitempty"`
	Bio               string `bson:"bio,omitempty" json:"bio,omitempty"`

	Role              string `bson:"role" json:"role"` // mentor | mentee
	Position          string `bson:"position" json:"position"`
	JobTitle          string `bson:"job_title,omitempty" json:"job_title,omitempty"`
	YearsOfExperience *int   `bson:"years_of_experience,omitempty" json:"years_of_experience,omitempty"`
	Industry          string `bson:"industry,omitempty" json:"industry,omitempty"`
	IndustryCI        string `bson:"industry_ci,omitempty" json:"-"` // lowercase, for case-insensitive filters

	Skills    []string `bson:"-" json:"skills,omitempty"`
	Interests []string `bson:"-" json:"interests,omitempty"`

	IsVerified bool      `bson:"is_verified" json:"is_verified"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// DisplayName is the name shown wherever a user appears in a roster.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// CalculateAge derives the user's age in whole years from DateOfBirth.
func (u User) CalculateAge(now time.Time) int {
	years := now.Year() - u.DateOfBirth.Year()
	anniversary := u.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
