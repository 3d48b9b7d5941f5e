// internal/app/features/mentors/routes.go
package mentors

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the directory search under the base path
// (typically "/api/users/search" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSearch)
	return r
}
