package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
	"github.com/abzsd/CareAgents/internal/services"
)

func staticJWT(token string) *mockJWT {
	return &mockJWT{
		GenerateFunc: func(_ context.Context, _ string, _ string) (string, error) {
			return token, nil
		},
	}
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		existing  []repositories.Record
		filterErr error
		insertErr error
		wantErr   error
	}{
		{
			name: "successful registration",
		},
		{
			name:     "email already registered",
			existing: []repositories.Record{{"user_id": "u-1", "email": "alice@example.com", "role": "patient"}},
			wantErr:  services.ErrUserAlreadyExists,
		},
		{
			name:      "lookup error",
			filterErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "unique index race",
			insertErr: repositories.ErrConstraintViolation,
			wantErr:   services.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{
				FindByFilterFunc: func(_ context.Context, filters repositories.Record, _ int) ([]repositories.Record, error) {
					assert.Equal(t, "alice@example.com", filters["email"])
					return tt.existing, tt.filterErr
				},
				InsertFunc: func(_ context.Context, data repositories.Record) (repositories.Record, error) {
					if tt.insertErr != nil {
						return nil, tt.insertErr
					}
					return data, nil
				},
			}
			svc := services.NewUserService(store, staticJWT("tok"))

			user, err := svc.Register(context.Background(), models.UserCreate{
				Email:    "alice@example.com",
				Password: "secret123",
				Role:     models.RolePatient,
			})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, user)

			assert.NotEmpty(t, user.UserID)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, models.RolePatient, user.Role)
			assert.False(t, user.IsOnboarded)
			assert.NotEqual(t, "secret123", user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		})
	}
}

func TestUserService_Register_DefaultRole(t *testing.T) {
	store := &mockStore{
		FindByFilterFunc: func(_ context.Context, _ repositories.Record, _ int) ([]repositories.Record, error) {
			return nil, nil
		},
		InsertFunc: func(_ context.Context, data repositories.Record) (repositories.Record, error) {
			return data, nil
		},
	}
	svc := services.NewUserService(store, staticJWT("tok"))

	user, err := svc.Register(context.Background(), models.UserCreate{
		Email:    "bob@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, user.Role)
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	account := repositories.Record{
		"user_id":       "u-1",
		"email":         "alice@example.com",
		"password_hash": string(hash),
		"role":          "doctor",
		"is_active":     true,
	}

	tests := []struct {
		name     string
		email    string
		password string
		existing []repositories.Record
		wantErr  error
	}{
		{
			name:     "successful login",
			email:    "alice@example.com",
			password: "secret123",
			existing: []repositories.Record{account},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret123",
			wantErr:  services.ErrUserDoesNotExist,
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrong",
			existing: []repositories.Record{account},
			wantErr:  services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{
				FindByFilterFunc: func(_ context.Context, _ repositories.Record, _ int) ([]repositories.Record, error) {
					return tt.existing, nil
				},
				UpdateFunc: func(_ context.Context, _ string, _ any, data repositories.Record) (bool, error) {
					_, hasLogin := data["last_login_at"]
					assert.True(t, hasLogin)
					return true, nil
				},
			}
			jwtGen := &mockJWT{
				GenerateFunc: func(_ context.Context, userID string, role string) (string, error) {
					assert.Equal(t, "u-1", userID)
					assert.Equal(t, "doctor", role)
					return "signed-token", nil
				},
			}
			svc := services.NewUserService(store, jwtGen)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "signed-token", token)
			require.NotNil(t, user)
			assert.Equal(t, "u-1", user.UserID)
		})
	}
}

func TestUserService_Login_JWTError(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	store := &mockStore{
		FindByFilterFunc: func(_ context.Context, _ repositories.Record, _ int) ([]repositories.Record, error) {
			return []repositories.Record{{
				"user_id":       "u-1",
				"email":         "alice@example.com",
				"password_hash": string(hash),
				"role":          "patient",
			}}, nil
		},
	}
	jwtGen := &mockJWT{
		GenerateFunc: func(_ context.Context, _ string, _ string) (string, error) {
			return "", errors.New("sign error")
		},
	}
	svc := services.NewUserService(store, jwtGen)

	token, _, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestUserService_Get_CarriesPasswordHash(t *testing.T) {
	store := &mockStore{
		FindByIDFunc: func(_ context.Context, idField string, _ any) (repositories.Record, error) {
			assert.Equal(t, "user_id", idField)
			return repositories.Record{
				"user_id":       "u-1",
				"email":         "alice@example.com",
				"password_hash": "stored-hash",
				"role":          "admin",
			}, nil
		},
	}
	svc := services.NewUserService(store, staticJWT("tok"))

	user, err := svc.Get(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "stored-hash", user.PasswordHash)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUserService_MarkOnboarded(t *testing.T) {
	store := &mockStore{
		UpdateFunc: func(_ context.Context, _ string, idValue any, data repositories.Record) (bool, error) {
			assert.Equal(t, "u-1", idValue)
			assert.Equal(t, true, data["is_onboarded"])
			return true, nil
		},
	}
	svc := services.NewUserService(store, staticJWT("tok"))

	ok, err := svc.MarkOnboarded(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_List(t *testing.T) {
	store := &mockStore{
		FindAllFunc: func(_ context.Context, limit, offset int) ([]repositories.Record, error) {
			assert.Equal(t, 5, limit)
			assert.Equal(t, 0, offset)
			return []repositories.Record{
				{"user_id": "u-1", "email": "a@example.com", "role": "patient"},
				{"user_id": "u-2", "email": "b@example.com", "role": "doctor"},
			}, nil
		},
		CountFunc: func(_ context.Context, _ repositories.Record) (int, error) {
			return 2, nil
		},
	}
	svc := services.NewUserService(store, staticJWT("tok"))

	page, err := svc.List(context.Background(), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, page)

	assert.Len(t, page.Users, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}
