package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abzsd/CareAgents/internal/handlers"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
	"github.com/abzsd/CareAgents/internal/services"
)

func appointmentRouter(svc handlers.AppointmentService) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/appointments", handlers.NewCreateAppointmentHandler(svc))
	r.Get("/appointments/{appointment_id}", handlers.NewGetAppointmentHandler(svc))
	r.Put("/appointments/{appointment_id}", handlers.NewUpdateAppointmentHandler(svc))
	r.Post("/appointments/{appointment_id}/cancel", handlers.NewCancelAppointmentHandler(svc))
	r.Delete("/appointments/{appointment_id}", handlers.NewDeleteAppointmentHandler(svc))
	r.Get("/patients/{patient_id}/appointments", handlers.NewListPatientAppointmentsHandler(svc))
	r.Get("/patients/{patient_id}/appointments/upcoming-count", handlers.NewUpcomingCountHandler(svc))
	r.Get("/doctors/{doctor_id}/appointments", handlers.NewListDoctorAppointmentsHandler(svc))
	r.Get("/doctors/{doctor_id}/appointments/today-count", handlers.NewTodayCountHandler(svc))
	return r
}

func TestCreateAppointmentHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		createFunc   func(ctx context.Context, in models.AppointmentCreate) (*models.Appointment, error)
		expectedCode int
	}{
		{
			name: "success",
			body: `{"patient_id":"p-1","doctor_id":"d-1","appointment_date":"2026-09-15","appointment_time":"10:30","appointment_type":"consultation"}`,
			createFunc: func(_ context.Context, in models.AppointmentCreate) (*models.Appointment, error) {
				return &models.Appointment{
					AppointmentID: "a-1",
					PatientID:     in.PatientID,
					DoctorID:      in.DoctorID,
					Status:        models.StatusScheduled,
				}, nil
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "missing doctor",
			body:         `{"patient_id":"p-1","appointment_date":"2026-09-15","appointment_time":"10:30"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown type",
			body:         `{"patient_id":"p-1","doctor_id":"d-1","appointment_date":"2026-09-15","appointment_time":"10:30","appointment_type":"seance"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "dangling references",
			body: `{"patient_id":"p-x","doctor_id":"d-x","appointment_date":"2026-09-15","appointment_time":"10:30","appointment_type":"consultation"}`,
			createFunc: func(_ context.Context, _ models.AppointmentCreate) (*models.Appointment, error) {
				return nil, repositories.ErrConstraintViolation
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := appointmentRouter(&mockAppointmentService{CreateFunc: tt.createFunc})

			req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUpdateAppointmentHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		updateFunc   func(ctx context.Context, appointmentID string, in models.AppointmentUpdate) (*models.Appointment, error)
		expectedCode int
	}{
		{
			name: "success",
			body: `{"status":"confirmed"}`,
			updateFunc: func(_ context.Context, appointmentID string, _ models.AppointmentUpdate) (*models.Appointment, error) {
				return &models.Appointment{AppointmentID: appointmentID, Status: models.StatusConfirmed}, nil
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "illegal transition",
			body: `{"status":"scheduled"}`,
			updateFunc: func(_ context.Context, _ string, _ models.AppointmentUpdate) (*models.Appointment, error) {
				return nil, fmt.Errorf("%w: completed -> scheduled", services.ErrInvalidTransition)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown status value",
			body:         `{"status":"postponed"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "not found",
			body: `{"status":"confirmed"}`,
			updateFunc: func(_ context.Context, _ string, _ models.AppointmentUpdate) (*models.Appointment, error) {
				return nil, nil
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "internal error",
			body: `{"status":"confirmed"}`,
			updateFunc: func(_ context.Context, _ string, _ models.AppointmentUpdate) (*models.Appointment, error) {
				return nil, errors.New("db down")
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := appointmentRouter(&mockAppointmentService{UpdateFunc: tt.updateFunc})

			req := httptest.NewRequest(http.MethodPut, "/appointments/a-1", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestCancelAppointmentHandler(t *testing.T) {
	svc := &mockAppointmentService{
		CancelFunc: func(_ context.Context, appointmentID string) (*models.Appointment, error) {
			switch appointmentID {
			case "a-1":
				return &models.Appointment{AppointmentID: "a-1", Status: models.StatusCancelled}, nil
			case "a-done":
				return nil, fmt.Errorf("%w: completed -> cancelled", services.ErrInvalidTransition)
			default:
				return nil, nil
			}
		},
	}
	router := appointmentRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/appointments/a-1/cancel", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var appt models.Appointment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &appt))
	assert.Equal(t, models.StatusCancelled, appt.Status)

	req = httptest.NewRequest(http.MethodPost, "/appointments/a-done/cancel", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/appointments/a-unknown/cancel", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListPatientAppointmentsHandler(t *testing.T) {
	var gotStatus *models.AppointmentStatus
	svc := &mockAppointmentService{
		ListByPatientFunc: func(_ context.Context, patientID string, page, pageSize int, status *models.AppointmentStatus) (*models.AppointmentPage, error) {
			assert.Equal(t, "p-1", patientID)
			gotStatus = status
			return &models.AppointmentPage{
				Appointments: []models.Appointment{{AppointmentID: "a-1", PatientID: patientID}},
				Total:        1,
				Page:         page,
				PageSize:     pageSize,
				TotalPages:   1,
			}, nil
		},
	}
	router := appointmentRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/patients/p-1/appointments?status=completed", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotStatus)
	assert.Equal(t, models.StatusCompleted, *gotStatus)
}

func TestListPatientAppointmentsHandler_BadStatus(t *testing.T) {
	router := appointmentRouter(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodGet, "/patients/p-1/appointments?status=postponed", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListDoctorAppointmentsHandler(t *testing.T) {
	svc := &mockAppointmentService{
		ListByDoctorFunc: func(_ context.Context, doctorID string, page, pageSize int, status *models.AppointmentStatus, date string) (*models.AppointmentPage, error) {
			assert.Equal(t, "d-1", doctorID)
			assert.Equal(t, "2026-09-15", date)
			require.NotNil(t, status)
			assert.Equal(t, models.StatusConfirmed, *status)
			return &models.AppointmentPage{Page: page, PageSize: pageSize}, nil
		},
	}
	router := appointmentRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/doctors/d-1/appointments?status=confirmed&date=2026-09-15", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpcomingCountHandler(t *testing.T) {
	router := appointmentRouter(&mockAppointmentService{
		UpcomingCountFunc: func(_ context.Context, patientID string) (int, error) {
			assert.Equal(t, "p-1", patientID)
			return 3, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/patients/p-1/appointments/upcoming-count", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestTodayCountHandler(t *testing.T) {
	router := appointmentRouter(&mockAppointmentService{
		TodayCountFunc: func(_ context.Context, doctorID string) (int, error) {
			assert.Equal(t, "d-1", doctorID)
			return 7, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/doctors/d-1/appointments/today-count", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Count)
}
