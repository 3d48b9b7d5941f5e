// internal/domain/models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation kinds.
const (
	ConversationPrivate = "private"
	ConversationGroup   = "group"
)

// Conversation is a message thread: either a direct thread between two
// users or the thread attached to a group.
type Conversation struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type      string              `bson:"type" json:"type"` // "private" | "group"
	GroupID   *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

// ConversationParticipant records who belongs to a private conversation.
// Group conversations resolve participants through group_members instead.
type ConversationParticipant struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversation_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
}
