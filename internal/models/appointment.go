package models

import (
	"fmt"
	"time"
)

// AppointmentStatus is the stored string tag for an appointment's state.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// ParseAppointmentStatus validates a status tag coming from a request body.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return AppointmentStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown appointment status %q", ErrValidation, s)
}

// CanTransitionTo reports whether a status change is a legal move.
// scheduled -> confirmed -> in_progress -> completed, with cancelled and
// no_show reachable from scheduled or confirmed. completed, cancelled and
// no_show are terminal. A same-status update is allowed as a no-op.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusScheduled:
		return next == StatusConfirmed || next == StatusInProgress ||
			next == StatusCancelled || next == StatusNoShow
	case StatusConfirmed:
		return next == StatusInProgress || next == StatusCancelled || next == StatusNoShow
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

// AppointmentType is the stored string tag for an appointment kind.
type AppointmentType string

const (
	TypeConsultation      AppointmentType = "consultation"
	TypeFollowUp          AppointmentType = "follow_up"
	TypeRoutineCheckup    AppointmentType = "routine_checkup"
	TypeEmergency         AppointmentType = "emergency"
	TypeTeleconsultation  AppointmentType = "teleconsultation"
)

// ParseAppointmentType validates a type tag coming from a request body.
func ParseAppointmentType(s string) (AppointmentType, error) {
	switch AppointmentType(s) {
	case TypeConsultation, TypeFollowUp, TypeRoutineCheckup,
		TypeEmergency, TypeTeleconsultation:
		return AppointmentType(s), nil
	}
	return "", fmt.Errorf("%w: unknown appointment type %q", ErrValidation, s)
}

// Appointment is a stored appointment row, optionally enriched with
// patient and doctor display fields resolved from their tables.
type Appointment struct {
	AppointmentID        string            `json:"appointment_id"`
	PatientID            string            `json:"patient_id"`
	DoctorID             string            `json:"doctor_id"`
	AppointmentDate      string            `json:"appointment_date"`
	AppointmentTime      string            `json:"appointment_time"`
	AppointmentType      AppointmentType   `json:"appointment_type"`
	Status               AppointmentStatus `json:"status"`
	Reason               string            `json:"reason,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	Location             string            `json:"location,omitempty"`
	DurationMinutes      int               `json:"duration_minutes,omitempty"`
	PatientName          string            `json:"patient_name,omitempty"`
	DoctorName           string            `json:"doctor_name,omitempty"`
	DoctorSpecialization string            `json:"doctor_specialization,omitempty"`
	IsActive             bool              `json:"is_active"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// AppointmentCreate carries validated input for a new appointment.
// Status is not settable here: every appointment starts scheduled.
type AppointmentCreate struct {
	PatientID       string
	DoctorID        string
	AppointmentDate string
	AppointmentTime string
	AppointmentType AppointmentType
	Reason          string
	Notes           string
	Location        string
	DurationMinutes int
}

// AppointmentUpdate carries a partial update; nil fields are left untouched.
type AppointmentUpdate struct {
	AppointmentDate *string
	AppointmentTime *string
	AppointmentType *AppointmentType
	Status          *AppointmentStatus
	Reason          *string
	Notes           *string
	Location        *string
	DurationMinutes *int
}

// AppointmentPage is one page of appointments with pagination info.
type AppointmentPage struct {
	Appointments []Appointment `json:"appointments"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
}

// AppointmentEvent is the Kafka payload published on appointment changes.
type AppointmentEvent struct {
	EventID       string `json:"event_id"`
	Timestamp     int64  `json:"timestamp"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Operation     string `json:"operation"`
	Status        string `json:"status,omitempty"`
}
