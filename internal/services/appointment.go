package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// Error variables
var (
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// NameCache caches display names used for appointment enrichment.
type NameCache interface {
	GetName(ctx context.Context, kind, id string) (string, error)
	SetName(ctx context.Context, kind, id, value string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AppointmentService handles appointment scheduling, enrichment and
// domain event publishing.
type AppointmentService struct {
	repo        RecordStore
	patients    RecordStore
	doctors     RecordStore
	cache       NameCache
	kafkaWriter KafkaWriter
}

// NewAppointmentService creates a new AppointmentService. cache and
// kafkaWriter may be nil; enrichment then always hits the database and
// events are skipped.
func NewAppointmentService(repo, patients, doctors RecordStore, cache NameCache, kafkaWriter KafkaWriter) *AppointmentService {
	return &AppointmentService{
		repo:        repo,
		patients:    patients,
		doctors:     doctors,
		cache:       cache,
		kafkaWriter: kafkaWriter,
	}
}

// publishEvent publishes an appointment event to Kafka.
func (svc *AppointmentService) publishEvent(ctx context.Context, event models.AppointmentEvent) {
	if svc.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal appointment event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.AppointmentID),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish appointment event", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("Appointment event published", "event_id", event.EventID, "operation", event.Operation)
	}
}

func (svc *AppointmentService) event(appt *models.Appointment, operation string) models.AppointmentEvent {
	return models.AppointmentEvent{
		EventID:       uuid.NewString(),
		Timestamp:     time.Now().Unix(),
		AppointmentID: appt.AppointmentID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		Operation:     operation,
		Status:        string(appt.Status),
	}
}

// Create stores a new appointment. Every appointment starts scheduled.
func (svc *AppointmentService) Create(ctx context.Context, in models.AppointmentCreate) (*models.Appointment, error) {
	durationMinutes := in.DurationMinutes
	if durationMinutes == 0 {
		durationMinutes = 30
	}

	rec := repositories.Record{
		"appointment_id":   uuid.NewString(),
		"patient_id":       in.PatientID,
		"doctor_id":        in.DoctorID,
		"appointment_date": in.AppointmentDate,
		"appointment_time": in.AppointmentTime,
		"appointment_type": string(in.AppointmentType),
		"status":           string(models.StatusScheduled),
		"duration_minutes": durationMinutes,
		"is_active":        true,
	}
	if in.Reason != "" {
		rec["reason"] = in.Reason
	}
	if in.Notes != "" {
		rec["notes"] = in.Notes
	}
	if in.Location != "" {
		rec["location"] = in.Location
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to create appointment", "err", err)
		return nil, err
	}

	var appt models.Appointment
	if err := models.Decode(stored, &appt); err != nil {
		return nil, err
	}
	svc.enrich(ctx, &appt)
	svc.publishEvent(ctx, svc.event(&appt, "created"))
	return &appt, nil
}

// Get returns an enriched appointment by id, or nil when no row matches.
func (svc *AppointmentService) Get(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	rec, err := svc.repo.FindByID(ctx, "appointment_id", appointmentID)
	if err != nil {
		logger.Log.Errorw("failed to get appointment", "appointment_id", appointmentID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var appt models.Appointment
	if err := models.Decode(rec, &appt); err != nil {
		return nil, err
	}
	svc.enrich(ctx, &appt)
	return &appt, nil
}

// ListByPatient returns one page of a patient's active appointments,
// newest visit first, optionally narrowed to one status.
func (svc *AppointmentService) ListByPatient(ctx context.Context, patientID string, page, pageSize int, status *models.AppointmentStatus) (*models.AppointmentPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var (
		recs      []repositories.Record
		countRecs []repositories.Record
		err       error
	)
	if status != nil {
		recs, err = svc.repo.Query(ctx,
			`SELECT * FROM appointments
			 WHERE patient_id = $1 AND status = $2 AND is_active = true
			 ORDER BY appointment_date DESC, appointment_time DESC
			 LIMIT $3 OFFSET $4`,
			patientID, string(*status), pageSize, offset)
		if err == nil {
			countRecs, err = svc.repo.Query(ctx,
				`SELECT COUNT(*) AS count FROM appointments
				 WHERE patient_id = $1 AND status = $2 AND is_active = true`,
				patientID, string(*status))
		}
	} else {
		recs, err = svc.repo.Query(ctx,
			`SELECT * FROM appointments
			 WHERE patient_id = $1 AND is_active = true
			 ORDER BY appointment_date DESC, appointment_time DESC
			 LIMIT $2 OFFSET $3`,
			patientID, pageSize, offset)
		if err == nil {
			countRecs, err = svc.repo.Query(ctx,
				`SELECT COUNT(*) AS count FROM appointments
				 WHERE patient_id = $1 AND is_active = true`,
				patientID)
		}
	}
	if err != nil {
		logger.Log.Errorw("failed to list patient appointments", "patient_id", patientID, "err", err)
		return nil, err
	}

	return svc.buildPage(ctx, recs, countRecs, page, pageSize)
}

// ListByDoctor returns one page of a doctor's active appointments in
// schedule order, optionally narrowed by status and date.
func (svc *AppointmentService) ListByDoctor(ctx context.Context, doctorID string, page, pageSize int, status *models.AppointmentStatus, date string) (*models.AppointmentPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	conditions := "doctor_id = $1 AND is_active = true"
	args := []any{doctorID}
	if status != nil {
		args = append(args, string(*status))
		conditions += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if date != "" {
		args = append(args, date)
		conditions += fmt.Sprintf(" AND appointment_date = $%d", len(args))
	}

	countRecs, err := svc.repo.Query(ctx,
		fmt.Sprintf("SELECT COUNT(*) AS count FROM appointments WHERE %s", conditions),
		args...)
	if err != nil {
		logger.Log.Errorw("failed to count doctor appointments", "doctor_id", doctorID, "err", err)
		return nil, err
	}

	args = append(args, pageSize, offset)
	recs, err := svc.repo.Query(ctx,
		fmt.Sprintf(
			`SELECT * FROM appointments WHERE %s
			 ORDER BY appointment_date ASC, appointment_time ASC
			 LIMIT $%d OFFSET $%d`,
			conditions, len(args)-1, len(args)),
		args...)
	if err != nil {
		logger.Log.Errorw("failed to list doctor appointments", "doctor_id", doctorID, "err", err)
		return nil, err
	}

	return svc.buildPage(ctx, recs, countRecs, page, pageSize)
}

func (svc *AppointmentService) buildPage(ctx context.Context, recs, countRecs []repositories.Record, page, pageSize int) (*models.AppointmentPage, error) {
	total := countFromRecords(countRecs)

	appointments := make([]models.Appointment, 0, len(recs))
	for _, rec := range recs {
		var appt models.Appointment
		if err := models.Decode(rec, &appt); err != nil {
			return nil, err
		}
		svc.enrich(ctx, &appt)
		appointments = append(appointments, appt)
	}

	return &models.AppointmentPage{
		Appointments: appointments,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   models.TotalPages(total, pageSize),
	}, nil
}

// Update applies a partial update. A status change must be a legal
// transition or the update is rejected with ErrInvalidTransition.
// Returns nil when the appointment does not exist.
func (svc *AppointmentService) Update(ctx context.Context, appointmentID string, in models.AppointmentUpdate) (*models.Appointment, error) {
	existing, err := svc.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	rec := repositories.Record{}
	statusChanged := false
	if in.Status != nil {
		if !existing.Status.CanTransitionTo(*in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, *in.Status)
		}
		statusChanged = *in.Status != existing.Status
		rec["status"] = string(*in.Status)
	}
	if in.AppointmentDate != nil {
		rec["appointment_date"] = *in.AppointmentDate
	}
	if in.AppointmentTime != nil {
		rec["appointment_time"] = *in.AppointmentTime
	}
	if in.AppointmentType != nil {
		rec["appointment_type"] = string(*in.AppointmentType)
	}
	if in.Reason != nil {
		rec["reason"] = *in.Reason
	}
	if in.Notes != nil {
		rec["notes"] = *in.Notes
	}
	if in.Location != nil {
		rec["location"] = *in.Location
	}
	if in.DurationMinutes != nil {
		rec["duration_minutes"] = *in.DurationMinutes
	}

	ok, err := svc.repo.Update(ctx, "appointment_id", appointmentID, rec)
	if err != nil {
		logger.Log.Errorw("failed to update appointment", "appointment_id", appointmentID, "err", err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	updated, err := svc.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if updated != nil && statusChanged {
		svc.publishEvent(ctx, svc.event(updated, "status_changed"))
	}
	return updated, nil
}

// Cancel moves an appointment to cancelled, subject to transition rules.
func (svc *AppointmentService) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	status := models.StatusCancelled
	appt, err := svc.Update(ctx, appointmentID, models.AppointmentUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	if appt != nil {
		svc.publishEvent(ctx, svc.event(appt, "cancelled"))
	}
	return appt, nil
}

// Delete soft-deletes an appointment.
func (svc *AppointmentService) Delete(ctx context.Context, appointmentID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "appointment_id", appointmentID)
	if err != nil {
		logger.Log.Errorw("failed to delete appointment", "appointment_id", appointmentID, "err", err)
	}
	return ok, err
}

// UpcomingCount counts a patient's scheduled or confirmed future visits.
func (svc *AppointmentService) UpcomingCount(ctx context.Context, patientID string) (int, error) {
	recs, err := svc.repo.Query(ctx,
		`SELECT COUNT(*) AS count FROM appointments
		 WHERE patient_id = $1
		 AND status IN ('scheduled', 'confirmed')
		 AND appointment_date >= CURRENT_DATE
		 AND is_active = true`,
		patientID)
	if err != nil {
		return 0, err
	}
	return countFromRecords(recs), nil
}

// TodayCount counts a doctor's appointments on the current date.
func (svc *AppointmentService) TodayCount(ctx context.Context, doctorID string) (int, error) {
	recs, err := svc.repo.Query(ctx,
		`SELECT COUNT(*) AS count FROM appointments
		 WHERE doctor_id = $1
		 AND appointment_date = CURRENT_DATE
		 AND status IN ('scheduled', 'confirmed', 'in_progress')
		 AND is_active = true`,
		doctorID)
	if err != nil {
		return 0, err
	}
	return countFromRecords(recs), nil
}

// enrich attaches display names resolved from the patient and doctor
// tables, consulting the name cache first. A foreign id that does not
// resolve simply leaves the field empty.
func (svc *AppointmentService) enrich(ctx context.Context, appt *models.Appointment) {
	if name := svc.cachedName(ctx, "patient", appt.PatientID, svc.lookupPatientName); name != "" {
		appt.PatientName = name
	}
	if name := svc.cachedName(ctx, "doctor", appt.DoctorID, svc.lookupDoctorName); name != "" {
		appt.DoctorName = name
	}
	if spec := svc.cachedName(ctx, "doctor_specialization", appt.DoctorID, svc.lookupDoctorSpecialization); spec != "" {
		appt.DoctorSpecialization = spec
	}
}

func (svc *AppointmentService) cachedName(ctx context.Context, kind, id string, lookup func(context.Context, string) string) string {
	if id == "" {
		return ""
	}
	if svc.cache != nil {
		if val, err := svc.cache.GetName(ctx, kind, id); err == nil && val != "" {
			return val
		}
	}

	val := lookup(ctx, id)
	if val != "" && svc.cache != nil {
		if err := svc.cache.SetName(ctx, kind, id, val); err != nil {
			logger.Log.Errorw("failed to cache display name", "kind", kind, "id", id, "err", err)
		}
	}
	return val
}

func (svc *AppointmentService) lookupPatientName(ctx context.Context, patientID string) string {
	rec, err := svc.patients.FindByID(ctx, "patient_id", patientID)
	if err != nil || rec == nil {
		return ""
	}
	first, _ := rec["first_name"].(string)
	last, _ := rec["last_name"].(string)
	if first == "" && last == "" {
		return ""
	}
	return first + " " + last
}

func (svc *AppointmentService) lookupDoctorName(ctx context.Context, doctorID string) string {
	rec, err := svc.doctors.FindByID(ctx, "doctor_id", doctorID)
	if err != nil || rec == nil {
		return ""
	}
	first, _ := rec["first_name"].(string)
	last, _ := rec["last_name"].(string)
	if first == "" && last == "" {
		return ""
	}
	return "Dr. " + first + " " + last
}

func (svc *AppointmentService) lookupDoctorSpecialization(ctx context.Context, doctorID string) string {
	rec, err := svc.doctors.FindByID(ctx, "doctor_id", doctorID)
	if err != nil || rec == nil {
		return ""
	}
	spec, _ := rec["specialization"].(string)
	return spec
}

// countFromRecords pulls the scalar out of a COUNT(*) result row.
func countFromRecords(recs []repositories.Record) int {
	if len(recs) == 0 {
		return 0
	}
	switch v := recs[0]["count"].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
