package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// DoctorService defines the interface that the doctor service must implement.
type DoctorService interface {
	Create(ctx context.Context, in models.DoctorCreate) (*models.Doctor, error)
	Get(ctx context.Context, doctorID string) (*models.Doctor, error)
	Update(ctx context.Context, doctorID string, in models.DoctorUpdate) (*models.Doctor, error)
	Delete(ctx context.Context, doctorID string) (bool, error)
	List(ctx context.Context, page, pageSize int, specialization string) (*models.DoctorPage, error)
	Search(ctx context.Context, term string, limit int) ([]models.Doctor, error)
}

// CreateDoctorRequest represents the JSON body for creating a doctor
// swagger:model CreateDoctorRequest
type CreateDoctorRequest struct {
	UserID            string                 `json:"user_id,omitempty"`
	FirstName         string                 `json:"first_name"`
	LastName          string                 `json:"last_name"`
	Email             string                 `json:"email"`
	Phone             string                 `json:"phone,omitempty"`
	Specialization    string                 `json:"specialization"`
	LicenseNumber     string                 `json:"license_number"`
	LicenseState      string                 `json:"license_state,omitempty"`
	Qualifications    []models.Qualification `json:"qualifications,omitempty"`
	YearsOfExperience int                    `json:"years_of_experience,omitempty"`
	ConsultationFee   float64                `json:"consultation_fee,omitempty"`
	Availability      []models.Availability  `json:"availability,omitempty"`
	LanguagesSpoken   []string               `json:"languages_spoken,omitempty"`
}

func (req *CreateDoctorRequest) toModel() (models.DoctorCreate, error) {
	var in models.DoctorCreate

	if req.FirstName == "" || req.LastName == "" {
		return in, errors.New("first_name and last_name are required")
	}
	if req.Email == "" || req.Specialization == "" || req.LicenseNumber == "" {
		return in, errors.New("email, specialization and license_number are required")
	}

	return models.DoctorCreate{
		UserID:            req.UserID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Specialization:    req.Specialization,
		LicenseNumber:     req.LicenseNumber,
		LicenseState:      req.LicenseState,
		Qualifications:    req.Qualifications,
		YearsOfExperience: req.YearsOfExperience,
		ConsultationFee:   req.ConsultationFee,
		Availability:      req.Availability,
		LanguagesSpoken:   req.LanguagesSpoken,
	}, nil
}

// UpdateDoctorRequest represents the JSON body for updating a doctor
// swagger:model UpdateDoctorRequest
type UpdateDoctorRequest struct {
	FirstName         *string                `json:"first_name,omitempty"`
	LastName          *string                `json:"last_name,omitempty"`
	Email             *string                `json:"email,omitempty"`
	Phone             *string                `json:"phone,omitempty"`
	Specialization    *string                `json:"specialization,omitempty"`
	LicenseNumber     *string                `json:"license_number,omitempty"`
	LicenseState      *string                `json:"license_state,omitempty"`
	Qualifications    []models.Qualification `json:"qualifications,omitempty"`
	YearsOfExperience *int                   `json:"years_of_experience,omitempty"`
	ConsultationFee   *float64               `json:"consultation_fee,omitempty"`
	Availability      []models.Availability  `json:"availability,omitempty"`
	LanguagesSpoken   []string               `json:"languages_spoken,omitempty"`
}

func (req *UpdateDoctorRequest) toModel() models.DoctorUpdate {
	return models.DoctorUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Specialization:    req.Specialization,
		LicenseNumber:     req.LicenseNumber,
		LicenseState:      req.LicenseState,
		Qualifications:    req.Qualifications,
		YearsOfExperience: req.YearsOfExperience,
		ConsultationFee:   req.ConsultationFee,
		Availability:      req.Availability,
		LanguagesSpoken:   req.LanguagesSpoken,
	}
}

// NewCreateDoctorHandler returns an HTTP handler for creating a doctor.
// @Summary Create a doctor
// @Tags doctors
// @Accept json
// @Produce json
// @Param createDoctorRequest body handlers.CreateDoctorRequest true "Doctor to create"
// @Success 201 {object} models.Doctor "Doctor created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Conflicting doctor data"
// @Security BearerAuth
// @Router /doctors [post]
func NewCreateDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		doctor, err := svc.Create(r.Context(), in)
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Conflicting doctor data")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, doctor)
	}
}

// NewGetDoctorHandler returns an HTTP handler for fetching a doctor.
// @Summary Get a doctor
// @Tags doctors
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Success 200 {object} models.Doctor "Doctor found"
// @Failure 404 {object} handlers.ErrorResponse "Doctor not found"
// @Security BearerAuth
// @Router /doctors/{doctor_id} [get]
func NewGetDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctor_id")

		doctor, err := svc.Get(r.Context(), doctorID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if doctor == nil {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return
		}

		writeJSON(w, http.StatusOK, doctor)
	}
}

// NewUpdateDoctorHandler returns an HTTP handler for updating a doctor.
// @Summary Update a doctor
// @Description Applies a partial update; omitted fields are left untouched.
// @Tags doctors
// @Accept json
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Param updateDoctorRequest body handlers.UpdateDoctorRequest true "Fields to update"
// @Success 200 {object} models.Doctor "Doctor updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Doctor not found"
// @Security BearerAuth
// @Router /doctors/{doctor_id} [put]
func NewUpdateDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctor_id")

		var req UpdateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		doctor, err := svc.Update(r.Context(), doctorID, req.toModel())
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Conflicting doctor data")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if doctor == nil {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return
		}

		writeJSON(w, http.StatusOK, doctor)
	}
}

// NewDeleteDoctorHandler returns an HTTP handler for deleting a doctor.
// @Summary Delete a doctor
// @Description Soft-deletes the doctor; the record stays readable by id.
// @Tags doctors
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Success 200 {object} handlers.MessageResponse "Doctor deleted"
// @Failure 404 {object} handlers.ErrorResponse "Doctor not found"
// @Security BearerAuth
// @Router /doctors/{doctor_id} [delete]
func NewDeleteDoctorHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctor_id")

		ok, err := svc.Delete(r.Context(), doctorID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Doctor deleted successfully"})
	}
}

// NewListDoctorsHandler returns an HTTP handler for listing doctors.
// @Summary List doctors
// @Tags doctors
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param specialization query string false "Filter by specialization"
// @Success 200 {object} models.DoctorPage "One page of doctors"
// @Security BearerAuth
// @Router /doctors [get]
func NewListDoctorsHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		specialization := r.URL.Query().Get("specialization")

		result, err := svc.List(r.Context(), page, pageSize, specialization)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// NewSearchDoctorsHandler returns an HTTP handler for searching doctors.
// @Summary Search doctors
// @Description Case-insensitive substring search over name and specialization.
// @Tags doctors
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.Doctor "Matching doctors"
// @Failure 400 {object} handlers.ErrorResponse "Missing search term"
// @Security BearerAuth
// @Router /doctors/search [get]
func NewSearchDoctorsHandler(svc DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("q")
		if term == "" {
			writeError(w, http.StatusBadRequest, "Search term is required")
			return
		}

		doctors, err := svc.Search(r.Context(), term, limitParam(r, 20))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, doctors)
	}
}
