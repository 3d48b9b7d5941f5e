// internal/app/features/messages/handler.go
//
// Package messages serves conversations and chat messages. A user only
// ever reads or writes conversations they participate in.
package messages

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	groupsfeature "github.com/stackmentor/stackmentor/internal/app/features/groups"
	"github.com/stackmentor/stackmentor/internal/app/features/shared"
	messagestore "github.com/stackmentor/stackmentor/internal/app/store/messages"
	"github.com/stackmentor/stackmentor/internal/app/system/htmlsanitize"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GroupMembership answers whether a user belongs to a group. Satisfied
// by the groups Manager; group conversations only admit group members.
type GroupMembership interface {
	IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
}

// MessageStore is the slice of the message store the handlers need.
type MessageStore interface {
	CreateConversation(ctx context.Context, convType string, groupID *primitive.ObjectID, participantIDs []primitive.ObjectID) (models.Conversation, error)
	IsParticipant(ctx context.Context, convID, userID primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, convID, senderID primitive.ObjectID, content string, mediaURLs []string) (models.Message, error)
	ListByConversation(ctx context.Context, convID primitive.ObjectID) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error
	ReadMessageIDs(ctx context.Context, userID primitive.ObjectID, messageIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	SoftDelete(ctx context.Context, messageID, senderID primitive.ObjectID) error
}

// Handler is the feature-level entry point for Messages.
type Handler struct {
	Store  MessageStore
	Groups GroupMembership
	Log    *zap.Logger
}

func NewHandler(store MessageStore, groups GroupMembership, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Groups: groups, Log: logger}
}

type createConversationRequest struct {
	Type           string   `json:"type"`
	GroupID        string   `json:"group_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

// HandleCreateConversation handles POST /.
func (h *Handler) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != models.ConversationPrivate && req.Type != models.ConversationGroup {
		shared.Error(w, http.StatusBadRequest, `type must be "private" or "group"`)
		return
	}

	var groupID *primitive.ObjectID
	if req.Type == models.ConversationGroup {
		gid, err := primitive.ObjectIDFromHex(req.GroupID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "group conversations need a valid group_id")
			return
		}
		groupID = &gid
	}

	participants := make([]primitive.ObjectID, 0, len(req.ParticipantIDs))
	for _, s := range req.ParticipantIDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid participant id")
			return
		}
		participants = append(participants, id)
	}
	if req.Type == models.ConversationPrivate && len(participants) != 2 {
		shared.Error(w, http.StatusBadRequest, "private conversations need exactly two participants")
		return
	}
	if len(participants) == 0 {
		shared.Error(w, http.StatusBadRequest, "participant_ids is required")
		return
	}

	if groupID != nil {
		for _, p := range participants {
			ok, err := h.Groups.IsMember(r.Context(), *groupID, p)
			if err != nil {
				if errors.Is(err, groupsfeature.ErrGroupNotFound) {
					shared.Error(w, http.StatusNotFound, err.Error())
					return
				}
				h.Log.Error("messages: group membership check failed", zap.Error(err))
				shared.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !ok {
				shared.Error(w, http.StatusForbidden, "participants must be members of the group")
				return
			}
		}
	}

	conv, err := h.Store.CreateConversation(r.Context(), req.Type, groupID, participants)
	if err != nil {
		h.Log.Error("messages: create conversation failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	shared.JSON(w, http.StatusCreated, conv)
}

type sendMessageRequest struct {
	SenderID  string   `json:"sender_id"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls"`
}

// HandleSend handles POST /{id}/messages.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	convID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	var req sendMessageRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	senderID, err := primitive.ObjectIDFromHex(req.SenderID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid sender_id")
		return
	}
	content := htmlsanitize.Sanitize(req.Content)
	if content == "" && len(req.MediaURLs) == 0 {
		shared.Error(w, http.StatusBadRequest, "message needs content or media")
		return
	}

	m, err := h.Store.Insert(r.Context(), convID, senderID, content, req.MediaURLs)
	if err != nil {
		if errors.Is(err, messagestore.ErrNotParticipant) {
			shared.Error(w, http.StatusForbidden, err.Error())
			return
		}
		h.Log.Error("messages: send failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	shared.JSON(w, http.StatusCreated, m)
}

// messageView is a message plus the requesting user's read flag.
type messageView struct {
	models.Message
	IsRead bool `json:"is_read"`
}

// ServeList handles GET /{id}/messages?user_id=…
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	convID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	userID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("user_id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ok, err := h.Store.IsParticipant(r.Context(), convID, userID)
	if err != nil {
		h.Log.Error("messages: participant check failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		shared.Error(w, http.StatusForbidden, messagestore.ErrNotParticipant.Error())
		return
	}

	msgs, err := h.Store.ListByConversation(r.Context(), convID)
	if err != nil {
		h.Log.Error("messages: list failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	read, err := h.Store.ReadMessageIDs(r.Context(), userID, ids)
	if err != nil {
		h.Log.Error("messages: read-status lookup failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{Message: m, IsRead: read[m.ID]})
	}
	shared.JSON(w, http.StatusOK, views)
}

type markReadRequest struct {
	UserID string `json:"user_id"`
}

// HandleMarkRead handles POST /{id}/messages/{messageID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	convID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	messageID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}
	var req markReadRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	ok, err := h.Store.IsParticipant(r.Context(), convID, userID)
	if err != nil {
		h.Log.Error("messages: participant check failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		shared.Error(w, http.StatusForbidden, messagestore.ErrNotParticipant.Error())
		return
	}

	if err := h.Store.MarkRead(r.Context(), messageID, userID); err != nil {
		h.Log.Error("messages: mark read failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /{id}/messages/{messageID}?sender_id=…
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	messageID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}
	senderID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("sender_id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "sender_id is required")
		return
	}

	if err := h.Store.SoftDelete(r.Context(), messageID, senderID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "message not found")
			return
		}
		h.Log.Error("messages: delete failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
