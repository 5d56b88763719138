package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// PatientService defines the interface that the patient service must implement.
type PatientService interface {
	Create(ctx context.Context, in models.PatientCreate) (*models.Patient, error)
	Get(ctx context.Context, patientID string) (*models.Patient, error)
	Update(ctx context.Context, patientID string, in models.PatientUpdate) (*models.Patient, error)
	Delete(ctx context.Context, patientID string) (bool, error)
	List(ctx context.Context, page, pageSize int, activeOnly bool) (*models.PatientPage, error)
	Search(ctx context.Context, term string, limit int) ([]models.Patient, error)
}

// CreatePatientRequest represents the JSON body for creating a patient
// swagger:model CreatePatientRequest
type CreatePatientRequest struct {
	UserID            string                   `json:"user_id,omitempty"`
	FirstName         string                   `json:"first_name"`
	LastName          string                   `json:"last_name"`
	DateOfBirth       string                   `json:"date_of_birth"`
	Gender            string                   `json:"gender"`
	Email             string                   `json:"email,omitempty"`
	Phone             string                   `json:"phone,omitempty"`
	Address           *models.Address          `json:"address,omitempty"`
	EmergencyContact  *models.EmergencyContact `json:"emergency_contact,omitempty"`
	BloodType         string                   `json:"blood_type,omitempty"`
	Allergies         []string                 `json:"allergies,omitempty"`
	ChronicConditions []string                 `json:"chronic_conditions,omitempty"`
	InsuranceInfo     *models.InsuranceInfo    `json:"insurance_info,omitempty"`
}

func (req *CreatePatientRequest) toModel() (models.PatientCreate, error) {
	var in models.PatientCreate

	if req.FirstName == "" || req.LastName == "" {
		return in, errors.New("first_name and last_name are required")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return in, errors.New("date_of_birth must be formatted YYYY-MM-DD")
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		return in, err
	}
	var bloodType models.BloodType
	if req.BloodType != "" {
		if bloodType, err = models.ParseBloodType(req.BloodType); err != nil {
			return in, err
		}
	}

	return models.PatientCreate{
		UserID:            req.UserID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		DateOfBirth:       dob,
		Gender:            gender,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		EmergencyContact:  req.EmergencyContact,
		BloodType:         bloodType,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
		InsuranceInfo:     req.InsuranceInfo,
	}, nil
}

// UpdatePatientRequest represents the JSON body for updating a patient
// swagger:model UpdatePatientRequest
type UpdatePatientRequest struct {
	FirstName         *string                  `json:"first_name,omitempty"`
	LastName          *string                  `json:"last_name,omitempty"`
	DateOfBirth       *string                  `json:"date_of_birth,omitempty"`
	Gender            *string                  `json:"gender,omitempty"`
	Email             *string                  `json:"email,omitempty"`
	Phone             *string                  `json:"phone,omitempty"`
	Address           *models.Address          `json:"address,omitempty"`
	EmergencyContact  *models.EmergencyContact `json:"emergency_contact,omitempty"`
	BloodType         *string                  `json:"blood_type,omitempty"`
	Allergies         []string                 `json:"allergies,omitempty"`
	ChronicConditions []string                 `json:"chronic_conditions,omitempty"`
	InsuranceInfo     *models.InsuranceInfo    `json:"insurance_info,omitempty"`
}

func (req *UpdatePatientRequest) toModel() (models.PatientUpdate, error) {
	var in models.PatientUpdate

	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return in, errors.New("date_of_birth must be formatted YYYY-MM-DD")
		}
		in.DateOfBirth = &dob
	}
	if req.Gender != nil {
		gender, err := models.ParseGender(*req.Gender)
		if err != nil {
			return in, err
		}
		in.Gender = &gender
	}
	if req.BloodType != nil {
		bloodType, err := models.ParseBloodType(*req.BloodType)
		if err != nil {
			return in, err
		}
		in.BloodType = &bloodType
	}

	in.FirstName = req.FirstName
	in.LastName = req.LastName
	in.Email = req.Email
	in.Phone = req.Phone
	in.Address = req.Address
	in.EmergencyContact = req.EmergencyContact
	in.Allergies = req.Allergies
	in.ChronicConditions = req.ChronicConditions
	in.InsuranceInfo = req.InsuranceInfo
	return in, nil
}

// NewCreatePatientHandler returns an HTTP handler for creating a patient.
// @Summary Create a patient
// @Description Stores a new patient profile. Age is derived from date of birth.
// @Tags patients
// @Accept json
// @Produce json
// @Param createPatientRequest body handlers.CreatePatientRequest true "Patient to create"
// @Success 201 {object} models.Patient "Patient created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Conflicting patient data"
// @Security BearerAuth
// @Router /patients [post]
func NewCreatePatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		patient, err := svc.Create(r.Context(), in)
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Conflicting patient data")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, patient)
	}
}

// NewGetPatientHandler returns an HTTP handler for fetching a patient.
// @Summary Get a patient
// @Tags patients
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {object} models.Patient "Patient found"
// @Failure 404 {object} handlers.ErrorResponse "Patient not found"
// @Security BearerAuth
// @Router /patients/{patient_id} [get]
func NewGetPatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		patient, err := svc.Get(r.Context(), patientID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if patient == nil {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}

		writeJSON(w, http.StatusOK, patient)
	}
}

// NewUpdatePatientHandler returns an HTTP handler for updating a patient.
// @Summary Update a patient
// @Description Applies a partial update; omitted fields are left untouched.
// @Tags patients
// @Accept json
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param updatePatientRequest body handlers.UpdatePatientRequest true "Fields to update"
// @Success 200 {object} models.Patient "Patient updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Patient not found"
// @Security BearerAuth
// @Router /patients/{patient_id} [put]
func NewUpdatePatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		var req UpdatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		in, err := req.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		patient, err := svc.Update(r.Context(), patientID, in)
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Conflicting patient data")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if patient == nil {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}

		writeJSON(w, http.StatusOK, patient)
	}
}

// NewDeletePatientHandler returns an HTTP handler for deleting a patient.
// @Summary Delete a patient
// @Description Soft-deletes the patient; the record stays readable by id.
// @Tags patients
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {object} handlers.MessageResponse "Patient deleted"
// @Failure 404 {object} handlers.ErrorResponse "Patient not found"
// @Security BearerAuth
// @Router /patients/{patient_id} [delete]
func NewDeletePatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		ok, err := svc.Delete(r.Context(), patientID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Patient deleted successfully"})
	}
}

// NewListPatientsHandler returns an HTTP handler for listing patients.
// @Summary List patients
// @Tags patients
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param active_only query bool false "Only active patients"
// @Success 200 {object} models.PatientPage "One page of patients"
// @Security BearerAuth
// @Router /patients [get]
func NewListPatientsHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		activeOnly := r.URL.Query().Get("active_only") == "true"

		result, err := svc.List(r.Context(), page, pageSize, activeOnly)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// NewSearchPatientsHandler returns an HTTP handler for searching patients.
// @Summary Search patients
// @Description Case-insensitive substring search over name and contact fields.
// @Tags patients
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.Patient "Matching patients"
// @Failure 400 {object} handlers.ErrorResponse "Missing search term"
// @Security BearerAuth
// @Router /patients/search [get]
func NewSearchPatientsHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("q")
		if term == "" {
			writeError(w, http.StatusBadRequest, "Search term is required")
			return
		}

		patients, err := svc.Search(r.Context(), term, limitParam(r, 20))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, patients)
	}
}
