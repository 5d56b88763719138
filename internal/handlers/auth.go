package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/middlewares"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/services"
)

// UserService defines the interface that the user service must implement.
type UserService interface {
	Register(ctx context.Context, in models.UserCreate) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, in models.UserUpdate) (*models.User, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`

	// Display name
	// default: John Doe
	DisplayName string `json:"display_name,omitempty"`

	// Account role: patient, doctor or admin
	// default: patient
	Role string `json:"role,omitempty"`
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Ensures unique email. Password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} models.User "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func NewRegisterHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Email == "" || len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "Email and a password of at least 8 characters are required")
			return
		}

		var role models.UserRole
		if req.Role != "" {
			var err error
			if role, err = models.ParseUserRole(req.Role); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		user, err := svc.Register(r.Context(), models.UserCreate{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
			Role:        role,
		})
		if err != nil {
			if errors.Is(err, services.ErrUserAlreadyExists) {
				writeError(w, http.StatusConflict, "Email already registered")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary Log in
// @Description Authenticates a user and returns a signed JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "User login request"
// @Success 200 {object} handlers.LoginResponse "Authenticated"
// @Failure 401 {object} handlers.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func NewLoginHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserDoesNotExist),
				errors.Is(err, services.ErrInvalidCredentials):
				writeError(w, http.StatusUnauthorized, "Invalid email or password")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
	}
}

// NewMeHandler returns an HTTP handler for the authenticated user's account.
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User "Current account"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} handlers.ErrorResponse "Account no longer exists"
// @Security BearerAuth
// @Router /auth/me [get]
func NewMeHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			writeError(w, http.StatusNotFound, "Account no longer exists")
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateProfileRequest represents the JSON body for updating the current account
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// NewUpdateProfileHandler returns an HTTP handler for updating the current account.
// @Summary Update the current user
// @Tags auth
// @Accept json
// @Produce json
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.User "Updated account"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Security BearerAuth
// @Router /auth/me [put]
func NewUpdateProfileHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := svc.Update(r.Context(), claims.UserID, models.UserUpdate{
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
		})
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			writeError(w, http.StatusNotFound, "Account no longer exists")
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
