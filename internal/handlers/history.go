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

// HistoryService defines the interface that the medical history service must implement.
type HistoryService interface {
	Create(ctx context.Context, in models.MedicalRecordCreate) (*models.MedicalRecord, error)
	Get(ctx context.Context, historyID string) (*models.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.MedicalRecordPage, error)
	Update(ctx context.Context, historyID string, in models.MedicalRecordUpdate) (*models.MedicalRecord, error)
	Delete(ctx context.Context, historyID string) (bool, error)
	Search(ctx context.Context, term string, limit int) ([]models.MedicalRecord, error)
}

// CreateMedicalRecordRequest represents the JSON body for a new visit record
// swagger:model CreateMedicalRecordRequest
type CreateMedicalRecordRequest struct {
	DoctorID      string                    `json:"doctor_id,omitempty"`
	DoctorName    string                    `json:"doctor_name,omitempty"`
	VisitDate     string                    `json:"visit_date"`
	Diagnosis     string                    `json:"diagnosis,omitempty"`
	Prescriptions []models.PrescriptionLine `json:"prescriptions,omitempty"`
	HealthStatus  string                    `json:"health_status,omitempty"`
	BloodPressure string                    `json:"blood_pressure,omitempty"`
	Symptoms      []string                  `json:"symptoms,omitempty"`
	Notes         string                    `json:"notes,omitempty"`
	FollowUpDate  string                    `json:"follow_up_date,omitempty"`
}

// UpdateMedicalRecordRequest represents the JSON body for updating a visit record
// swagger:model UpdateMedicalRecordRequest
type UpdateMedicalRecordRequest struct {
	DoctorID      *string                   `json:"doctor_id,omitempty"`
	DoctorName    *string                   `json:"doctor_name,omitempty"`
	VisitDate     *string                   `json:"visit_date,omitempty"`
	Diagnosis     *string                   `json:"diagnosis,omitempty"`
	Prescriptions []models.PrescriptionLine `json:"prescriptions,omitempty"`
	HealthStatus  *string                   `json:"health_status,omitempty"`
	BloodPressure *string                   `json:"blood_pressure,omitempty"`
	Symptoms      []string                  `json:"symptoms,omitempty"`
	Notes         *string                   `json:"notes,omitempty"`
	FollowUpDate  *string                   `json:"follow_up_date,omitempty"`
}

// NewCreateMedicalRecordHandler returns an HTTP handler for adding a visit record.
// @Summary Add a medical history record
// @Tags medical-history
// @Accept json
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param createMedicalRecordRequest body handlers.CreateMedicalRecordRequest true "Visit record"
// @Success 201 {object} models.MedicalRecord "Record created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Unknown patient"
// @Security BearerAuth
// @Router /patients/{patient_id}/medical-history [post]
func NewCreateMedicalRecordHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		var req CreateMedicalRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.VisitDate == "" {
			writeError(w, http.StatusBadRequest, "visit_date is required")
			return
		}

		record, err := svc.Create(r.Context(), models.MedicalRecordCreate{
			PatientID:     patientID,
			DoctorID:      req.DoctorID,
			DoctorName:    req.DoctorName,
			VisitDate:     req.VisitDate,
			Diagnosis:     req.Diagnosis,
			Prescriptions: req.Prescriptions,
			HealthStatus:  req.HealthStatus,
			BloodPressure: req.BloodPressure,
			Symptoms:      req.Symptoms,
			Notes:         req.Notes,
			FollowUpDate:  req.FollowUpDate,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Unknown patient")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, record)
	}
}

// NewListMedicalHistoryHandler returns an HTTP handler for a patient's history.
// @Summary List a patient's medical history
// @Description Most recent visit first.
// @Tags medical-history
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.MedicalRecordPage "One page of visit records"
// @Security BearerAuth
// @Router /patients/{patient_id}/medical-history [get]
func NewListMedicalHistoryHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")
		page, pageSize := pageParams(r)

		result, err := svc.ListByPatient(r.Context(), patientID, page, pageSize)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// NewGetMedicalRecordHandler returns an HTTP handler for one visit record.
// @Summary Get a medical history record
// @Tags medical-history
// @Produce json
// @Param history_id path string true "Record ID"
// @Success 200 {object} models.MedicalRecord "Record found"
// @Failure 404 {object} handlers.ErrorResponse "Record not found"
// @Security BearerAuth
// @Router /medical-history/{history_id} [get]
func NewGetMedicalRecordHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historyID := chi.URLParam(r, "history_id")

		record, err := svc.Get(r.Context(), historyID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

// NewUpdateMedicalRecordHandler returns an HTTP handler for updating a visit record.
// @Summary Update a medical history record
// @Tags medical-history
// @Accept json
// @Produce json
// @Param history_id path string true "Record ID"
// @Param updateMedicalRecordRequest body handlers.UpdateMedicalRecordRequest true "Fields to update"
// @Success 200 {object} models.MedicalRecord "Record updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Record not found"
// @Security BearerAuth
// @Router /medical-history/{history_id} [put]
func NewUpdateMedicalRecordHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historyID := chi.URLParam(r, "history_id")

		var req UpdateMedicalRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		record, err := svc.Update(r.Context(), historyID, models.MedicalRecordUpdate{
			DoctorID:      req.DoctorID,
			DoctorName:    req.DoctorName,
			VisitDate:     req.VisitDate,
			Diagnosis:     req.Diagnosis,
			Prescriptions: req.Prescriptions,
			HealthStatus:  req.HealthStatus,
			BloodPressure: req.BloodPressure,
			Symptoms:      req.Symptoms,
			Notes:         req.Notes,
			FollowUpDate:  req.FollowUpDate,
		})
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

// NewDeleteMedicalRecordHandler returns an HTTP handler for deleting a visit record.
// @Summary Delete a medical history record
// @Tags medical-history
// @Produce json
// @Param history_id path string true "Record ID"
// @Success 200 {object} handlers.MessageResponse "Record deleted"
// @Failure 404 {object} handlers.ErrorResponse "Record not found"
// @Security BearerAuth
// @Router /medical-history/{history_id} [delete]
func NewDeleteMedicalRecordHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historyID := chi.URLParam(r, "history_id")

		ok, err := svc.Delete(r.Context(), historyID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Record deleted successfully"})
	}
}

// NewSearchMedicalHistoryHandler returns an HTTP handler searching visit records.
// @Summary Search medical history
// @Description Case-insensitive substring match over diagnosis, notes and health status.
// @Tags medical-history
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Result limit"
// @Success 200 {array} models.MedicalRecord "Matching records"
// @Failure 400 {object} handlers.ErrorResponse "Missing search term"
// @Security BearerAuth
// @Router /medical-history/search [get]
func NewSearchMedicalHistoryHandler(svc HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("q")
		if term == "" {
			writeError(w, http.StatusBadRequest, "A q query parameter is required")
			return
		}

		records, err := svc.Search(r.Context(), term, limitParam(r, 20))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if records == nil {
			records = []models.MedicalRecord{}
		}

		writeJSON(w, http.StatusOK, records)
	}
}
