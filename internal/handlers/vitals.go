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

// VitalsService defines the interface that the health vitals service must implement.
type VitalsService interface {
	Create(ctx context.Context, in models.VitalSignsCreate) (*models.VitalSigns, error)
	Get(ctx context.Context, vitalID string) (*models.VitalSigns, error)
	ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.VitalSignsPage, error)
	Latest(ctx context.Context, patientID string) (*models.VitalSigns, error)
	Update(ctx context.Context, vitalID string, in models.VitalSignsUpdate) (*models.VitalSigns, error)
	Delete(ctx context.Context, vitalID string) (bool, error)
}

// RecordVitalsRequest represents the JSON body for a new vitals reading
// swagger:model RecordVitalsRequest
type RecordVitalsRequest struct {
	RecordedBy          string                       `json:"recorded_by,omitempty"`
	Height              *models.Measurement          `json:"height,omitempty"`
	Weight              *models.Measurement          `json:"weight,omitempty"`
	BMI                 float64                      `json:"bmi,omitempty"`
	Temperature         *models.Measurement          `json:"temperature,omitempty"`
	BloodPressure       *models.BloodPressureReading `json:"blood_pressure,omitempty"`
	HeartRateBPM        int                          `json:"heart_rate_bpm,omitempty"`
	RespiratoryRate     int                          `json:"respiratory_rate,omitempty"`
	OxygenSaturation    float64                      `json:"oxygen_saturation,omitempty"`
	BloodGlucose        *models.BloodGlucose         `json:"blood_glucose,omitempty"`
	GeneralHealthStatus string                       `json:"general_health_status,omitempty"`
	PainLevel           *int                         `json:"pain_level,omitempty"`
	Notes               string                       `json:"notes,omitempty"`
}

// UpdateVitalsRequest represents the JSON body for a partial vitals update
// swagger:model UpdateVitalsRequest
type UpdateVitalsRequest struct {
	RecordedBy          *string                      `json:"recorded_by,omitempty"`
	Height              *models.Measurement          `json:"height,omitempty"`
	Weight              *models.Measurement          `json:"weight,omitempty"`
	BMI                 *float64                     `json:"bmi,omitempty"`
	Temperature         *models.Measurement          `json:"temperature,omitempty"`
	BloodPressure       *models.BloodPressureReading `json:"blood_pressure,omitempty"`
	HeartRateBPM        *int                         `json:"heart_rate_bpm,omitempty"`
	RespiratoryRate     *int                         `json:"respiratory_rate,omitempty"`
	OxygenSaturation    *float64                     `json:"oxygen_saturation,omitempty"`
	BloodGlucose        *models.BloodGlucose         `json:"blood_glucose,omitempty"`
	GeneralHealthStatus *string                      `json:"general_health_status,omitempty"`
	PainLevel           *int                         `json:"pain_level,omitempty"`
	Notes               *string                      `json:"notes,omitempty"`
}

// NewRecordVitalsHandler returns an HTTP handler recording a vitals reading.
// @Summary Record health vitals
// @Tags vitals
// @Accept json
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param recordVitalsRequest body handlers.RecordVitalsRequest true "Vitals reading"
// @Success 201 {object} models.VitalSigns "Reading recorded"
// @Failure 400 {object} handlers.ErrorResponse "Measurement out of range"
// @Failure 409 {object} handlers.ErrorResponse "Unknown patient"
// @Security BearerAuth
// @Router /patients/{patient_id}/vitals [post]
func NewRecordVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		var req RecordVitalsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var healthStatus models.HealthStatusTag
		if req.GeneralHealthStatus != "" {
			parsed, err := models.ParseHealthStatus(req.GeneralHealthStatus)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			healthStatus = parsed
		}

		vitals, err := svc.Create(r.Context(), models.VitalSignsCreate{
			PatientID:        patientID,
			RecordedBy:       req.RecordedBy,
			Height:           req.Height,
			Weight:           req.Weight,
			BMI:              req.BMI,
			Temperature:      req.Temperature,
			BloodPressure:    req.BloodPressure,
			HeartRateBPM:     req.HeartRateBPM,
			RespiratoryRate:  req.RespiratoryRate,
			OxygenSaturation: req.OxygenSaturation,
			BloodGlucose:     req.BloodGlucose,
			HealthStatus:     healthStatus,
			PainLevel:        req.PainLevel,
			Notes:            req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, repositories.ErrConstraintViolation):
				writeError(w, http.StatusConflict, "Unknown patient")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, vitals)
	}
}

// NewListVitalsHandler returns an HTTP handler for a patient's vitals history.
// @Summary List a patient's vitals readings
// @Description Most recent reading first.
// @Tags vitals
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.VitalSignsPage "One page of readings"
// @Security BearerAuth
// @Router /patients/{patient_id}/vitals [get]
func NewListVitalsHandler(svc VitalsService) http.HandlerFunc {
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

// NewLatestVitalsHandler returns an HTTP handler for the most recent reading.
// @Summary Get a patient's latest vitals
// @Tags vitals
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {object} models.VitalSigns "Latest reading"
// @Failure 404 {object} handlers.ErrorResponse "No readings recorded"
// @Security BearerAuth
// @Router /patients/{patient_id}/vitals/latest [get]
func NewLatestVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		vitals, err := svc.Latest(r.Context(), patientID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if vitals == nil {
			writeError(w, http.StatusNotFound, "No vitals recorded")
			return
		}

		writeJSON(w, http.StatusOK, vitals)
	}
}

// NewGetVitalsHandler returns an HTTP handler for one vitals reading.
// @Summary Get a vitals reading
// @Tags vitals
// @Produce json
// @Param vital_id path string true "Reading ID"
// @Success 200 {object} models.VitalSigns "Reading found"
// @Failure 404 {object} handlers.ErrorResponse "Reading not found"
// @Security BearerAuth
// @Router /vitals/{vital_id} [get]
func NewGetVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vitalID := chi.URLParam(r, "vital_id")

		vitals, err := svc.Get(r.Context(), vitalID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if vitals == nil {
			writeError(w, http.StatusNotFound, "Reading not found")
			return
		}

		writeJSON(w, http.StatusOK, vitals)
	}
}

// NewUpdateVitalsHandler returns an HTTP handler for correcting a reading.
// @Summary Update a vitals reading
// @Tags vitals
// @Accept json
// @Produce json
// @Param vital_id path string true "Reading ID"
// @Param updateVitalsRequest body handlers.UpdateVitalsRequest true "Fields to update"
// @Success 200 {object} models.VitalSigns "Reading updated"
// @Failure 400 {object} handlers.ErrorResponse "Measurement out of range"
// @Failure 404 {object} handlers.ErrorResponse "Reading not found"
// @Security BearerAuth
// @Router /vitals/{vital_id} [put]
func NewUpdateVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vitalID := chi.URLParam(r, "vital_id")

		var req UpdateVitalsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var healthStatus *models.HealthStatusTag
		if req.GeneralHealthStatus != nil {
			parsed, err := models.ParseHealthStatus(*req.GeneralHealthStatus)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			healthStatus = &parsed
		}

		vitals, err := svc.Update(r.Context(), vitalID, models.VitalSignsUpdate{
			RecordedBy:       req.RecordedBy,
			Height:           req.Height,
			Weight:           req.Weight,
			BMI:              req.BMI,
			Temperature:      req.Temperature,
			BloodPressure:    req.BloodPressure,
			HeartRateBPM:     req.HeartRateBPM,
			RespiratoryRate:  req.RespiratoryRate,
			OxygenSaturation: req.OxygenSaturation,
			BloodGlucose:     req.BloodGlucose,
			HealthStatus:     healthStatus,
			PainLevel:        req.PainLevel,
			Notes:            req.Notes,
		})
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if vitals == nil {
			writeError(w, http.StatusNotFound, "Reading not found")
			return
		}

		writeJSON(w, http.StatusOK, vitals)
	}
}

// NewDeleteVitalsHandler returns an HTTP handler for deleting a reading.
// @Summary Delete a vitals reading
// @Tags vitals
// @Produce json
// @Param vital_id path string true "Reading ID"
// @Success 200 {object} handlers.MessageResponse "Reading deleted"
// @Failure 404 {object} handlers.ErrorResponse "Reading not found"
// @Security BearerAuth
// @Router /vitals/{vital_id} [delete]
func NewDeleteVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vitalID := chi.URLParam(r, "vital_id")

		ok, err := svc.Delete(r.Context(), vitalID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Reading not found")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Reading deleted successfully"})
	}
}
