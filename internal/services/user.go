package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID string, role string) (string, error)
}

// UserService handles account registration, login and profile updates.
type UserService struct {
	repo RecordStore
	jwt  JWTGenerator
}

// NewUserService creates a new UserService instance.
func NewUserService(repo RecordStore, jwt JWTGenerator) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

// decodeUser bridges a raw record to a User, carrying over the password
// hash which the JSON bridge deliberately skips.
func decodeUser(rec repositories.Record) (*models.User, error) {
	var user models.User
	if err := models.Decode(rec, &user); err != nil {
		return nil, err
	}
	if hash, ok := rec["password_hash"].(string); ok {
		user.PasswordHash = hash
	}
	return &user, nil
}

// Register creates a new user account with a bcrypt-hashed password.
func (svc *UserService) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	existing, err := svc.GetByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "email", in.Email)
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RolePatient
	}

	rec := repositories.Record{
		"user_id":       uuid.NewString(),
		"email":         in.Email,
		"password_hash": string(hashedPassword),
		"role":          string(role),
		"is_onboarded":  false,
		"is_active":     true,
	}
	if in.DisplayName != "" {
		rec["display_name"] = in.DisplayName
	}
	if in.PhotoURL != "" {
		rec["photo_url"] = in.PhotoURL
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, repositories.ErrConstraintViolation) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	return decodeUser(stored)
}

// Login authenticates a user and returns a JWT token with the account.
func (svc *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := svc.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", nil, err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "email", email)
		return "", nil, ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID, string(user.Role))
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", nil, err
	}

	if _, err := svc.UpdateLastLogin(ctx, user.UserID); err != nil {
		logger.Log.Errorw("failed to record last login", "user_id", user.UserID, "err", err)
	}

	return token, user, nil
}

// Get returns a user by id, or nil when no row matches.
func (svc *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	rec, err := svc.repo.FindByID(ctx, "user_id", userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return decodeUser(rec)
}

// GetByEmail returns a user by email, or nil when no row matches.
func (svc *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	recs, err := svc.repo.FindByFilter(ctx, repositories.Record{"email": email}, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return decodeUser(recs[0])
}

// Update applies a partial update. Returns nil when the user does not exist.
func (svc *UserService) Update(ctx context.Context, userID string, in models.UserUpdate) (*models.User, error) {
	rec := repositories.Record{}
	if in.DisplayName != nil {
		rec["display_name"] = *in.DisplayName
	}
	if in.PhotoURL != nil {
		rec["photo_url"] = *in.PhotoURL
	}
	if in.Role != nil {
		rec["role"] = string(*in.Role)
	}
	if in.IsOnboarded != nil {
		rec["is_onboarded"] = *in.IsOnboarded
	}
	if in.LastLoginAt != nil {
		rec["last_login_at"] = *in.LastLoginAt
	}

	ok, err := svc.repo.Update(ctx, "user_id", userID, rec)
	if err != nil {
		logger.Log.Errorw("failed to update user", "user_id", userID, "err", err)
		return nil, err
	}
	if !ok && len(rec) > 0 {
		return nil, nil
	}

	return svc.Get(ctx, userID)
}

// MarkOnboarded flags an account as having completed profile onboarding.
func (svc *UserService) MarkOnboarded(ctx context.Context, userID string) (bool, error) {
	ok, err := svc.repo.Update(ctx, "user_id", userID, repositories.Record{"is_onboarded": true})
	if err != nil {
		logger.Log.Errorw("failed to mark user onboarded", "user_id", userID, "err", err)
	}
	return ok, err
}

// UpdateLastLogin stamps the account's last login time.
func (svc *UserService) UpdateLastLogin(ctx context.Context, userID string) (bool, error) {
	return svc.repo.Update(ctx, "user_id", userID, repositories.Record{"last_login_at": time.Now().UTC()})
}

// Delete soft-deletes a user account.
func (svc *UserService) Delete(ctx context.Context, userID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "user_id", userID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", userID, "err", err)
	}
	return ok, err
}

// List returns one page of user accounts.
func (svc *UserService) List(ctx context.Context, page, pageSize int) (*models.UserPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	recs, err := svc.repo.FindAll(ctx, pageSize, offset)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	total, err := svc.repo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		u, err := decodeUser(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return &models.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: models.TotalPages(total, pageSize),
	}, nil
}
