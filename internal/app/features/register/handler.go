// internal/app/features/register/handler.go
//
// Package register handles account creation and email verification.
// New accounts start unverified and stay invisible to directory search
// until the emailed link is followed.
package register

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stackmentor/stackmentor/internal/app/features/shared"
	"github.com/stackmentor/stackmentor/internal/app/store/emailverify"
	userstore "github.com/stackmentor/stackmentor/internal/app/store/users"
	"github.com/stackmentor/stackmentor/internal/app/system/htmlsanitize"
	"github.com/stackmentor/stackmentor/internal/app/system/mailer"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user store registration needs.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}

// VerificationStore issues and redeems verification tokens.
type VerificationStore interface {
	Create(ctx context.Context, userID primitive.ObjectID) (string, error)
	Consume(ctx context.Context, token string) (primitive.ObjectID, error)
}

// Handler is the feature-level entry point for registration.
type Handler struct {
	Users         UserStore
	Verifications VerificationStore
	Mailer        mailer.Sender
	BaseURL       string
	Log           *zap.Logger
}

func NewHandler(users UserStore, verifications VerificationStore, mail mailer.Sender, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		Verifications: verifications,
		Mailer:        mail,
		BaseURL:       baseURL,
		Log:           logger,
	}
}

type registerRequest struct {
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	Name              string   `json:"name"`
	DateOfBirth       string   `json:"date_of_birth"` // YYYY-MM-DD
	City              string   `json:"city"`
	State             string   `json:"state"`
	Gender            string   `json:"gender"`
	Role              string   `json:"role"`
	JobTitle          string   `json:"job_title"`
	YearsOfExperience *int     `json:"years_of_experience"`
	Industry          string   `json:"industry"`
	Skills            []string `json:"skills"`
	Interests         []string `json:"interests"`
	Bio               string   `json:"bio"`
}

const minPasswordLen = 8

// splitName breaks a full name into first and last. Both parts are
// required; everything after the first token is the last name.
func splitName(full string) (first, last string, ok bool) {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	first, last, ok := splitName(req.Name)
	if !ok {
		shared.Error(w, http.StatusBadRequest, "name must include both first and last name")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		shared.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		shared.Error(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}
	if !models.IsValidRole(strings.ToLower(strings.TrimSpace(req.Role))) {
		shared.Error(w, http.StatusBadRequest, `role must be "mentor" or "mentee"`)
		return
	}

	var dob time.Time
	if req.DateOfBirth != "" {
		var err error
		dob, err = time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("register: password hash failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		Email:             req.Email,
		PasswordHash:      string(hash),
		FirstName:         first,
		LastName:          last,
		DateOfBirth:       dob,
		City:              req.City,
		State:             req.State,
		Gender:            req.Gender,
		Role:              req.Role,
		JobTitle:          req.JobTitle,
		YearsOfExperience: req.YearsOfExperience,
		Industry:          req.Industry,
		Skills:            req.Skills,
		Interests:         req.Interests,
		Bio:               htmlsanitize.Sanitize(req.Bio),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			shared.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("register: create user failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.Verifications.Create(r.Context(), u.ID)
	if err != nil {
		h.Log.Error("register: create verification failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	msg := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		FirstName: u.FirstName,
		VerifyURL: fmt.Sprintf("%s/api/auth/verify?token=%s", h.BaseURL, token),
		ExpiresIn: "24 hours",
	})
	msg.To = u.Email
	if err := h.Mailer.Send(msg); err != nil {
		// The account exists; the user can request a resend later.
		h.Log.Error("register: verification email failed", zap.Error(err), zap.String("email", u.Email))
	} else {
		h.Log.Info("verification email sent", zap.String("email", u.Email), zap.String("user_id", u.ID.Hex()))
	}

	shared.JSON(w, http.StatusCreated, u)
}

// HandleVerify handles GET /auth/verify?token=…
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		shared.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	userID, err := h.Verifications.Consume(r.Context(), token)
	if err != nil {
		if errors.Is(err, emailverify.ErrNotFound) {
			shared.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error("verify: consume token failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Users.MarkVerified(r.Context(), userID); err != nil {
		h.Log.Error("verify: mark verified failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("email verified", zap.String("user_id", userID.Hex()))
	shared.JSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}
