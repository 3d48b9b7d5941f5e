// internal/app/features/groups/handler.go
package groups

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stackmentor/stackmentor/internal/app/features/shared"
	"github.com/stackmentor/stackmentor/internal/app/system/htmlsanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Groups.
type Handler struct {
	Mgr *Manager
	Log *zap.Logger
}

func NewHandler(mgr *Manager, logger *zap.Logger) *Handler {
	return &Handler{Mgr: mgr, Log: logger}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	createdBy, err := primitive.ObjectIDFromHex(req.CreatedBy)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid created_by id")
		return
	}

	g, err := h.Mgr.CreateGroup(r.Context(), req.Name, htmlsanitize.Sanitize(req.Description), createdBy)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	shared.JSON(w, http.StatusCreated, g)
}

// ServeView handles GET /{id}: the group and its resolved roster.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	view, err := h.Mgr.GroupWithMembers(r.Context(), groupID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, view)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// HandleAddMember handles POST /{id}/members.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}
	var req addMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	view, err := h.Mgr.AddMember(r.Context(), groupID, userID, req.Role)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	shared.JSON(w, http.StatusCreated, view)
}

// HandleRemoveMember handles DELETE /{id}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	view, err := h.Mgr.RemoveMember(r.Context(), groupID, userID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, view)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrUserNotFound):
		shared.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrNotMember):
		shared.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidGroupName), errors.Is(err, ErrInvalidRole):
		shared.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("groups: request failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
	}
}
