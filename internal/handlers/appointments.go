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
	"github.com/abzsd/CareAgents/internal/services"
)

// AppointmentService defines the interface that the appointment service must implement.
type AppointmentService interface {
	Create(ctx context.Context, in models.AppointmentCreate) (*models.Appointment, error)
	Get(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Update(ctx context.Context, appointmentID string, in models.AppointmentUpdate) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Delete(ctx context.Context, appointmentID string) (bool, error)
	ListByPatient(ctx context.Context, patientID string, page, pageSize int, status *models.AppointmentStatus) (*models.AppointmentPage, error)
	ListByDoctor(ctx context.Context, doctorID string, page, pageSize int, status *models.AppointmentStatus, date string) (*models.AppointmentPage, error)
	UpcomingCount(ctx context.Context, patientID string) (int, error)
	TodayCount(ctx context.Context, doctorID string) (int, error)
}

// CountResponse represents a single count value
// swagger:model CountResponse
type CountResponse struct {
	Count int `json:"count"`
}

// CreateAppointmentRequest represents the JSON body for booking an appointment
// swagger:model CreateAppointmentRequest
type CreateAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	AppointmentType string `json:"appointment_type"`
	Reason          string `json:"reason,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Location        string `json:"location,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

func (req *CreateAppointmentRequest) toModel() (models.AppointmentCreate, error) {
	var in models.AppointmentCreate

	if req.PatientID == "" || req.DoctorID == "" {
		return in, errors.New("patient_id and doctor_id are required")
	}
	if req.AppointmentDate == "" || req.AppointmentTime == "" {
		return in, errors.New("appointment_date and appointment_time are required")
	}
	apptType, err := models.ParseAppointmentType(req.AppointmentType)
	if err != nil {
		return in, err
	}

	return models.AppointmentCreate{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		AppointmentType: apptType,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
	}, nil
}

// UpdateAppointmentRequest represents the JSON body for updating an appointment
// swagger:model UpdateAppointmentRequest
type UpdateAppointmentRequest struct {
	AppointmentDate *string `json:"appointment_date,omitempty"`
	AppointmentTime *string `json:"appointment_time,omitempty"`
	AppointmentType *string `json:"appointment_type,omitempty"`
	Status          *string `json:"status,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Location        *string `json:"location,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
}

func (req *UpdateAppointmentRequest) toModel() (models.AppointmentUpdate, error) {
	var in models.AppointmentUpdate

	if req.AppointmentType != nil {
		apptType, err := models.ParseAppointmentType(*req.AppointmentType)
		if err != nil {
			return in, err
		}
		in.AppointmentType = &apptType
	}
	if req.Status != nil {
		status, err := models.ParseAppointmentStatus(*req.Status)
		if err != nil {
			return in, err
		}
		in.Status = &status
	}

	in.AppointmentDate = req.AppointmentDate
	in.AppointmentTime = req.AppointmentTime
	in.Reason = req.Reason
	in.Notes = req.Notes
	in.Location = req.Location
	in.DurationMinutes = req.DurationMinutes
	return in, nil
}

// statusFilter parses the optional status query parameter.
func statusFilter(r *http.Request) (*models.AppointmentStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status, err := models.ParseAppointmentStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// NewCreateAppointmentHandler returns an HTTP handler for booking an appointment.
// @Summary Book an appointment
// @Description Schedules a new appointment. Every appointment starts in scheduled status.
// @Tags appointments
// @Accept json
// @Produce json
// @Param createAppointmentRequest body handlers.CreateAppointmentRequest true "Appointment to book"
// @Success 201 {object} models.Appointment "Appointment booked"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Unknown patient or doctor"
// @Security BearerAuth
// @Router /appointments [post]
func NewCreateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		in, err := req.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		appt, err := svc.Create(r.Context(), in)
		if err != nil {
			if errors.Is(err, repositories.ErrConstraintViolation) {
				writeError(w, http.StatusConflict, "Unknown patient or doctor")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

// NewGetAppointmentHandler returns an HTTP handler for fetching an appointment.
// @Summary Get an appointment
// @Tags appointments
// @Produce json
// @Param appointment_id path string true "Appointment ID"
// @Success 200 {object} models.Appointment "Appointment found"
// @Failure 404 {object} handlers.ErrorResponse "Appointment not found"
// @Security BearerAuth
// @Router /appointments/{appointment_id} [get]
func NewGetAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID := chi.URLParam(r, "appointment_id")

		appt, err := svc.Get(r.Context(), appointmentID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if appt == nil {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

// NewUpdateAppointmentHandler returns an HTTP handler for updating an appointment.
// @Summary Update an appointment
// @Description Applies a partial update. Status changes must follow the appointment lifecycle.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment_id path string true "Appointment ID"
// @Param updateAppointmentRequest body handlers.UpdateAppointmentRequest true "Fields to update"
// @Success 200 {object} models.Appointment "Appointment updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request or illegal status change"
// @Failure 404 {object} handlers.ErrorResponse "Appointment not found"
// @Security BearerAuth
// @Router /appointments/{appointment_id} [put]
func NewUpdateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID := chi.URLParam(r, "appointment_id")

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		in, err := req.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		appt, err := svc.Update(r.Context(), appointmentID, in)
		if err != nil {
			if errors.Is(err, services.ErrInvalidTransition) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if appt == nil {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

// NewCancelAppointmentHandler returns an HTTP handler for cancelling an appointment.
// @Summary Cancel an appointment
// @Description Moves the appointment to cancelled. In-progress or finished appointments cannot be cancelled.
// @Tags appointments
// @Produce json
// @Param appointment_id path string true "Appointment ID"
// @Success 200 {object} models.Appointment "Appointment cancelled"
// @Failure 400 {object} handlers.ErrorResponse "Illegal status change"
// @Failure 404 {object} handlers.ErrorResponse "Appointment not found"
// @Security BearerAuth
// @Router /appointments/{appointment_id}/cancel [post]
func NewCancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID := chi.URLParam(r, "appointment_id")

		appt, err := svc.Cancel(r.Context(), appointmentID)
		if err != nil {
			if errors.Is(err, services.ErrInvalidTransition) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if appt == nil {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

// NewDeleteAppointmentHandler returns an HTTP handler for deleting an appointment.
// @Summary Delete an appointment
// @Tags appointments
// @Produce json
// @Param appointment_id path string true "Appointment ID"
// @Success 200 {object} handlers.MessageResponse "Appointment deleted"
// @Failure 404 {object} handlers.ErrorResponse "Appointment not found"
// @Security BearerAuth
// @Router /appointments/{appointment_id} [delete]
func NewDeleteAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID := chi.URLParam(r, "appointment_id")

		ok, err := svc.Delete(r.Context(), appointmentID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Appointment deleted successfully"})
	}
}

// NewListPatientAppointmentsHandler returns an HTTP handler for a patient's appointments.
// @Summary List a patient's appointments
// @Description Most recent visit first. Optionally narrowed to one status.
// @Tags appointments
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.AppointmentPage "One page of appointments"
// @Failure 400 {object} handlers.ErrorResponse "Unknown status"
// @Security BearerAuth
// @Router /patients/{patient_id}/appointments [get]
func NewListPatientAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")
		page, pageSize := pageParams(r)

		status, err := statusFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.ListByPatient(r.Context(), patientID, page, pageSize, status)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// NewListDoctorAppointmentsHandler returns an HTTP handler for a doctor's schedule.
// @Summary List a doctor's appointments
// @Description Schedule order. Optionally narrowed by status and date.
// @Tags appointments
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Filter by status"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} models.AppointmentPage "One page of appointments"
// @Failure 400 {object} handlers.ErrorResponse "Unknown status"
// @Security BearerAuth
// @Router /doctors/{doctor_id}/appointments [get]
func NewListDoctorAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "doctor_id")
		page, pageSize := pageParams(r)

		status, err := statusFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.ListByDoctor(r.Context(), doctorID, page, pageSize, status, r.URL.Query().Get("date"))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// NewUpcomingCountHandler returns an HTTP handler counting a patient's
// upcoming appointments.
// @Summary Count upcoming appointments
// @Description Scheduled or confirmed appointments from today onward.
// @Tags appointments
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {object} handlers.CountResponse "Upcoming appointment count"
// @Security BearerAuth
// @Router /patients/{patient_id}/appointments/upcoming-count [get]
func NewUpcomingCountHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UpcomingCount(r.Context(), chi.URLParam(r, "patient_id"))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, CountResponse{Count: count})
	}
}

// NewTodayCountHandler returns an HTTP handler counting a doctor's
// appointments for today.
// @Summary Count today's appointments
// @Tags appointments
// @Produce json
// @Param doctor_id path string true "Doctor ID"
// @Success 200 {object} handlers.CountResponse "Today's appointment count"
// @Security BearerAuth
// @Router /doctors/{doctor_id}/appointments/today-count [get]
func NewTodayCountHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.TodayCount(r.Context(), chi.URLParam(r, "doctor_id"))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, CountResponse{Count: count})
	}
}
