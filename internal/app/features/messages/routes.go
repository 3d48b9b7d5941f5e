// internal/app/features/messages/routes.go
package messages

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Conversation routes under the base path
// (typically "/api/conversations" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreateConversation)
	r.Post("/{id}/messages", h.HandleSend)
	r.Get("/{id}/messages", h.ServeList)
	r.Post("/{id}/messages/{messageID}/read", h.HandleMarkRead)
	r.Delete("/{id}/messages/{messageID}", h.HandleDelete)

	return r
}
