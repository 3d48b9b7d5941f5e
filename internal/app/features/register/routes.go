// internal/app/features/register/routes.go
package register

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts registration and verification under the base path
// (typically "/api" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Get("/auth/verify", h.HandleVerify)

	return r
}
