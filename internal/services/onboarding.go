package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// Error variables
var (
	ErrAlreadyOnboarded = errors.New("user has already completed onboarding")
)

// PatientProfiles creates and resolves patient profiles during onboarding.
type PatientProfiles interface {
	Create(ctx context.Context, in models.PatientCreate) (*models.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*models.Patient, error)
}

// DoctorProfiles creates and resolves doctor profiles during onboarding.
type DoctorProfiles interface {
	Create(ctx context.Context, in models.DoctorCreate) (*models.Doctor, error)
	GetByUserID(ctx context.Context, userID string) (*models.Doctor, error)
}

// UserAccounts is the account surface onboarding needs.
type UserAccounts interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	MarkOnboarded(ctx context.Context, userID string) (bool, error)
}

// OnboardingService links a registered account to its role profile.
// Callers run it under a request transaction so the profile insert and
// the onboarded flag commit or roll back together. Duplicate onboarding
// is rejected by the is_onboarded check and, for concurrent requests,
// by the unique indexes on patients.user_id and doctors.user_id.
type OnboardingService struct {
	users    UserAccounts
	patients PatientProfiles
	doctors  DoctorProfiles
}

// NewOnboardingService creates a new OnboardingService instance.
func NewOnboardingService(users UserAccounts, patients PatientProfiles, doctors DoctorProfiles) *OnboardingService {
	return &OnboardingService{
		users:    users,
		patients: patients,
		doctors:  doctors,
	}
}

// OnboardPatient creates the patient profile for an account and marks
// the account onboarded. A second onboarding attempt is a conflict.
func (svc *OnboardingService) OnboardPatient(ctx context.Context, userID string, in models.PatientCreate) (*models.Patient, error) {
	user, err := svc.check(ctx, userID)
	if err != nil {
		return nil, err
	}

	in.UserID = user.UserID
	if in.Email == "" {
		in.Email = user.Email
	}

	patient, err := svc.patients.Create(ctx, in)
	if err != nil {
		// The unique index on patients.user_id catches the race where two
		// requests both pass check before either profile commits.
		if errors.Is(err, repositories.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyOnboarded, userID)
		}
		logger.Log.Errorw("failed to create patient profile", "user_id", userID, "err", err)
		return nil, err
	}

	if _, err := svc.users.MarkOnboarded(ctx, userID); err != nil {
		return nil, err
	}

	logger.Log.Infow("patient onboarded", "user_id", userID, "patient_id", patient.PatientID)
	return patient, nil
}

// OnboardDoctor creates the doctor profile for an account and marks the
// account onboarded. A second onboarding attempt is a conflict.
func (svc *OnboardingService) OnboardDoctor(ctx context.Context, userID string, in models.DoctorCreate) (*models.Doctor, error) {
	user, err := svc.check(ctx, userID)
	if err != nil {
		return nil, err
	}

	in.UserID = user.UserID
	if in.Email == "" {
		in.Email = user.Email
	}

	doctor, err := svc.doctors.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repositories.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyOnboarded, userID)
		}
		logger.Log.Errorw("failed to create doctor profile", "user_id", userID, "err", err)
		return nil, err
	}

	if _, err := svc.users.MarkOnboarded(ctx, userID); err != nil {
		return nil, err
	}

	logger.Log.Infow("doctor onboarded", "user_id", userID, "doctor_id", doctor.DoctorID)
	return doctor, nil
}

// Status reports whether an account finished onboarding, with the
// profile that was created for it.
func (svc *OnboardingService) Status(ctx context.Context, userID string) (*models.OnboardingStatus, error) {
	user, err := svc.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserDoesNotExist
	}

	status := &models.OnboardingStatus{
		User:        user,
		IsOnboarded: user.IsOnboarded,
	}
	if !user.IsOnboarded {
		return status, nil
	}

	switch user.Role {
	case models.RoleDoctor:
		if status.Doctor, err = svc.doctors.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
	default:
		if status.Patient, err = svc.patients.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func (svc *OnboardingService) check(ctx context.Context, userID string) (*models.User, error) {
	user, err := svc.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserDoesNotExist
	}
	if user.IsOnboarded {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnboarded, userID)
	}
	return user, nil
}
