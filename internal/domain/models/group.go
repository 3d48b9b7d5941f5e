// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxGroupNameLen is the longest allowed group name.
const MaxGroupNameLen = 50

// Group is a named community.
//
// NOTE:
//   - Member lists are not embedded on Group.
//     All membership is stored in the group_members collection.
//   - CreatedAt is set once at creation and never updated.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
