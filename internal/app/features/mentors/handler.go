// internal/app/features/mentors/handler.go
//
// Package mentors serves the user directory search. Results only ever
// include verified accounts.
package mentors

import (
	"context"
	"net/http"
	"strings"

	"github.com/stackmentor/stackmentor/internal/app/features/shared"
	"github.com/stackmentor/stackmentor/internal/app/store/queries/usersearch"
	"github.com/stackmentor/stackmentor/internal/app/system/normalize"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Searcher executes a composed directory predicate.
type Searcher interface {
	Search(ctx context.Context, filter bson.M) ([]models.User, error)
}

// Handler is the feature-level entry point for directory search.
type Handler struct {
	Users Searcher
	Log   *zap.Logger
}

func NewHandler(users Searcher, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeSearch handles GET /.
//
// Query parameters, all optional:
//
//	search      free-text name match ("jo", "john smith")
//	role        "mentor" | "mentee"
//	experience  "N+" or "N-M" years
//	industries  comma-separated industry list
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minYears, maxYears, err := usersearch.ParseExperienceRange(q.Get("experience"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	crit := usersearch.Criteria{
		SearchText: normalize.QueryParam(q.Get("search")),
		Role:       normalize.QueryParam(q.Get("role")),
		MinYears:   minYears,
		MaxYears:   maxYears,
		Industries: splitCSV(q.Get("industries")),
	}

	users, err := h.Users.Search(r.Context(), usersearch.Compose(crit))
	if err != nil {
		h.Log.Error("mentors: search failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	shared.JSON(w, http.StatusOK, users)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
