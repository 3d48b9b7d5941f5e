// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Group routes under the base path
// (typically "/api/groups" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/members", h.HandleAddMember)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)

	return r
}
