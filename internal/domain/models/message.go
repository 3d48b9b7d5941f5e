// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single post in a conversation. Deletion is soft: the
// document stays, IsDeleted flips and DeletedAt records when.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversation_id"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	Content        string             `bson:"content" json:"content"`
	MediaURLs      []string           `bson:"media_urls,omitempty" json:"media_urls,omitempty"`
	SentAt         time.Time          `bson:"sent_at" json:"sent_at"`
	EditedAt       *time.Time         `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	IsDeleted      bool               `bson:"is_deleted" json:"is_deleted"`
	DeletedAt      *time.Time         `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// MessageReadStatus marks a message as read by a user. At most one
// document per (message_id, user_id).
type MessageReadStatus struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID primitive.ObjectID `bson:"message_id" json:"message_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ReadAt    time.Time          `bson:"read_at" json:"read_at"`
}
