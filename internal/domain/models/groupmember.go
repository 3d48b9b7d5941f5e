// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold inside a group.
const (
	GroupRoleAdmin  = "admin"
	GroupRoleMember = "member"
)

// IsValidGroupRole checks if a value is a valid group member role.
func IsValidGroupRole(role string) bool {
	return role == GroupRoleAdmin || role == GroupRoleMember
}

// GroupMember is the authoritative join between users and groups.
// Exactly one document per (group_id, user_id); role is a scalar
// ("admin"|"member"). JoinedAt is assigned by the store at insert time,
// never supplied by callers.
type GroupMember struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"` // "admin" | "member"
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
