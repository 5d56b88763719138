package models

import (
	"fmt"
	"time"
)

// UserRole is the stored string tag for a user's role.
type UserRole string

const (
	RoleDoctor  UserRole = "doctor"
	RolePatient UserRole = "patient"
	RoleAdmin   UserRole = "admin"
)

// ParseUserRole validates a role tag coming from a request body.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleDoctor, RolePatient, RoleAdmin:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("%w: unknown user role %q", ErrValidation, s)
}

// User is a stored user account row.
type User struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	Role         UserRole   `json:"role"`
	IsOnboarded  bool       `json:"is_onboarded"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserCreate carries validated input for a new user account.
type UserCreate struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
	Role        UserRole
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Role        *UserRole
	IsOnboarded *bool
	LastLoginAt *time.Time
}

// UserPage is one page of users with pagination info.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// OnboardingStatus reports whether an account finished onboarding and
// which role profile it ended up with.
type OnboardingStatus struct {
	User        *User    `json:"user"`
	IsOnboarded bool     `json:"is_onboarded"`
	Patient     *Patient `json:"patient,omitempty"`
	Doctor      *Doctor  `json:"doctor,omitempty"`
}
