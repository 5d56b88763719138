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

// OnboardingService defines the interface that the onboarding service must implement.
type OnboardingService interface {
	OnboardPatient(ctx context.Context, userID string, in models.PatientCreate) (*models.Patient, error)
	OnboardDoctor(ctx context.Context, userID string, in models.DoctorCreate) (*models.Doctor, error)
	Status(ctx context.Context, userID string) (*models.OnboardingStatus, error)
}

// NewOnboardPatientHandler returns an HTTP handler for patient onboarding.
// @Summary Complete patient onboarding
// @Description Creates the patient profile for the authenticated account and marks it onboarded.
// @Tags onboarding
// @Accept json
// @Produce json
// @Param createPatientRequest body handlers.CreatePatientRequest true "Patient profile"
// @Success 201 {object} models.Patient "Profile created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 409 {object} handlers.ErrorResponse "Account already onboarded"
// @Security BearerAuth
// @Router /onboarding/patient [post]
func NewOnboardPatientHandler(svc OnboardingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		in, err := req.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		patient, err := svc.OnboardPatient(r.Context(), claims.UserID, in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAlreadyOnboarded):
				writeError(w, http.StatusConflict, "Account already onboarded")
			case errors.Is(err, services.ErrUserDoesNotExist):
				writeError(w, http.StatusNotFound, "Account no longer exists")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, patient)
	}
}

// NewOnboardDoctorHandler returns an HTTP handler for doctor onboarding.
// @Summary Complete doctor onboarding
// @Description Creates the doctor profile for the authenticated account and marks it onboarded.
// @Tags onboarding
// @Accept json
// @Produce json
// @Param createDoctorRequest body handlers.CreateDoctorRequest true "Doctor profile"
// @Success 201 {object} models.Doctor "Profile created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 409 {object} handlers.ErrorResponse "Account already onboarded"
// @Security BearerAuth
// @Router /onboarding/doctor [post]
func NewOnboardDoctorHandler(svc OnboardingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		in, err := req.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		doctor, err := svc.OnboardDoctor(r.Context(), claims.UserID, in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAlreadyOnboarded):
				writeError(w, http.StatusConflict, "Account already onboarded")
			case errors.Is(err, services.ErrUserDoesNotExist):
				writeError(w, http.StatusNotFound, "Account no longer exists")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, doctor)
	}
}

// NewOnboardingStatusHandler returns an HTTP handler for the onboarding status check.
// @Summary Get onboarding status
// @Description Reports whether the authenticated account finished onboarding, with its role profile.
// @Tags onboarding
// @Produce json
// @Success 200 {object} models.OnboardingStatus "Onboarding status"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} handlers.ErrorResponse "Account no longer exists"
// @Security BearerAuth
// @Router /onboarding/status [get]
func NewOnboardingStatusHandler(svc OnboardingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		status, err := svc.Status(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserDoesNotExist) {
				writeError(w, http.StatusNotFound, "Account no longer exists")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}
