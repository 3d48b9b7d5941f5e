// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"time"

	"github.com/stackmentor/stackmentor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	conversations *mongo.Collection
	participants  *mongo.Collection
	messages      *mongo.Collection
	readStatus    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		conversations: db.Collection("conversations"),
		participants:  db.Collection("conversation_participants"),
		messages:      db.Collection("messages"),
		readStatus:    db.Collection("message_read_status"),
	}
}

var (
	// ErrNotParticipant is returned when a user acts on a conversation they are not part of.
	ErrNotParticipant = errors.New("user is not a participant of this conversation")
	errNoParticipants = errors.New("a conversation needs at least one participant")
)

// CreateConversation inserts a conversation and its participant rows.
// For group conversations groupID points at the backing group; for
// private ones it is nil.
func (s *Store) CreateConversation(ctx context.Context, convType string, groupID *primitive.ObjectID, participantIDs []primitive.ObjectID) (models.Conversation, error) {
	if len(participantIDs) == 0 {
		return models.Conversation{}, errNoParticipants
	}

	conv := models.Conversation{
		ID:        primitive.NewObjectID(),
		Type:      convType,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.conversations.InsertOne(ctx, conv); err != nil {
		return models.Conversation{}, err
	}

	docs := make([]interface{}, 0, len(participantIDs))
	for _, uid := range participantIDs {
		docs = append(docs, models.ConversationParticipant{
			ID:             primitive.NewObjectID(),
			ConversationID: conv.ID,
			UserID:         uid,
		})
	}
	if _, err := s.participants.InsertMany(ctx, docs); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// AddParticipant enrolls a user in a conversation. Safe to repeat; the
// unique (conversation_id, user_id) index absorbs duplicates.
func (s *Store) AddParticipant(ctx context.Context, convID, userID primitive.ObjectID) error {
	p := models.ConversationParticipant{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		UserID:         userID,
	}
	if _, err := s.participants.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// IsParticipant reports whether a user belongs to a conversation.
func (s *Store) IsParticipant(ctx context.Context, convID, userID primitive.ObjectID) (bool, error) {
	n, err := s.participants.CountDocuments(ctx, bson.M{"conversation_id": convID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert stores a message. The sender must already be a participant.
func (s *Store) Insert(ctx context.Context, convID, senderID primitive.ObjectID, content string, mediaURLs []string) (models.Message, error) {
	ok, err := s.IsParticipant(ctx, convID, senderID)
	if err != nil {
		return models.Message{}, err
	}
	if !ok {
		return models.Message{}, ErrNotParticipant
	}

	m := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		MediaURLs:      mediaURLs,
		SentAt:         time.Now().UTC(),
	}
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListByConversation returns a conversation's messages oldest first,
// excluding soft-deleted ones.
func (s *Store) ListByConversation(ctx context.Context, convID primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"conversation_id": convID, "is_deleted": false}
	cur, err := s.messages.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead records that a user has read a message. Repeat calls are
// no-ops thanks to the unique (message_id, user_id) index.
func (s *Store) MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error {
	rs := models.MessageReadStatus{
		ID:        primitive.NewObjectID(),
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    time.Now().UTC(),
	}
	if _, err := s.readStatus.InsertOne(ctx, rs); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// ReadMessageIDs returns which of the given messages the user has read.
func (s *Store) ReadMessageIDs(ctx context.Context, userID primitive.ObjectID, messageIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	read := make(map[primitive.ObjectID]bool, len(messageIDs))
	if len(messageIDs) == 0 {
		return read, nil
	}

	filter := bson.M{"user_id": userID, "message_id": bson.M{"$in": messageIDs}}
	cur, err := s.readStatus.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var rs models.MessageReadStatus
		if err := cur.Decode(&rs); err != nil {
			return nil, err
		}
		read[rs.MessageID] = true
	}
	return read, cur.Err()
}


// SoftDelete marks a message deleted without removing the document.
// Only the sender may delete their message.
func (s *Store) SoftDelete(ctx context.Context, messageID, senderID primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "sender_id": senderID},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
