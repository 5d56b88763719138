package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// HistoryService manages per-patient medical visit records.
type HistoryService struct {
	repo RecordStore
}

func NewHistoryService(repo RecordStore) *HistoryService {
	return &HistoryService{repo: repo}
}

// Create stores a new visit record for a patient.
func (svc *HistoryService) Create(ctx context.Context, in models.MedicalRecordCreate) (*models.MedicalRecord, error) {
	rec := repositories.Record{
		"history_id": uuid.NewString(),
		"patient_id": in.PatientID,
		"visit_date": in.VisitDate,
		"is_active":  true,
	}
	if in.DoctorID != "" {
		rec["doctor_id"] = in.DoctorID
	}
	if in.DoctorName != "" {
		rec["doctor_name"] = in.DoctorName
	}
	if in.Diagnosis != "" {
		rec["diagnosis"] = in.Diagnosis
	}
	if len(in.Prescriptions) > 0 {
		rec["prescriptions"] = in.Prescriptions
	}
	if in.HealthStatus != "" {
		rec["health_status"] = in.HealthStatus
	}
	if in.BloodPressure != "" {
		rec["blood_pressure"] = in.BloodPressure
	}
	if len(in.Symptoms) > 0 {
		rec["symptoms"] = in.Symptoms
	}
	if in.Notes != "" {
		rec["notes"] = in.Notes
	}
	if in.FollowUpDate != "" {
		rec["follow_up_date"] = in.FollowUpDate
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to create medical record", "patient_id", in.PatientID, "err", err)
		return nil, err
	}

	var record models.MedicalRecord
	if err := models.Decode(stored, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns one visit record by id, or nil when no row matches.
func (svc *HistoryService) Get(ctx context.Context, historyID string) (*models.MedicalRecord, error) {
	rec, err := svc.repo.FindByID(ctx, "history_id", historyID)
	if err != nil {
		logger.Log.Errorw("failed to get medical record", "history_id", historyID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var record models.MedicalRecord
	if err := models.Decode(rec, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByPatient returns one page of a patient's active visit records,
// most recent visit first.
func (svc *HistoryService) ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.MedicalRecordPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	recs, err := svc.repo.Query(ctx,
		`SELECT * FROM medical_history
		 WHERE patient_id = $1 AND is_active = true
		 ORDER BY visit_date DESC, created_at DESC
		 LIMIT $2 OFFSET $3`,
		patientID, pageSize, offset)
	if err != nil {
		logger.Log.Errorw("failed to list medical records", "patient_id", patientID, "err", err)
		return nil, err
	}

	total, err := svc.repo.Count(ctx, repositories.Record{"patient_id": patientID, "is_active": true})
	if err != nil {
		return nil, err
	}

	records, err := models.DecodeAll[models.MedicalRecord](recs)
	if err != nil {
		return nil, err
	}

	return &models.MedicalRecordPage{
		Records:    records,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: models.TotalPages(total, pageSize),
	}, nil
}

// Update applies a partial update. Returns nil when the record does not exist.
func (svc *HistoryService) Update(ctx context.Context, historyID string, in models.MedicalRecordUpdate) (*models.MedicalRecord, error) {
	rec := repositories.Record{}
	if in.DoctorID != nil {
		rec["doctor_id"] = *in.DoctorID
	}
	if in.DoctorName != nil {
		rec["doctor_name"] = *in.DoctorName
	}
	if in.VisitDate != nil {
		rec["visit_date"] = *in.VisitDate
	}
	if in.Diagnosis != nil {
		rec["diagnosis"] = *in.Diagnosis
	}
	if in.Prescriptions != nil {
		rec["prescriptions"] = in.Prescriptions
	}
	if in.HealthStatus != nil {
		rec["health_status"] = *in.HealthStatus
	}
	if in.BloodPressure != nil {
		rec["blood_pressure"] = *in.BloodPressure
	}
	if in.Symptoms != nil {
		rec["symptoms"] = in.Symptoms
	}
	if in.Notes != nil {
		rec["notes"] = *in.Notes
	}
	if in.FollowUpDate != nil {
		rec["follow_up_date"] = *in.FollowUpDate
	}

	ok, err := svc.repo.Update(ctx, "history_id", historyID, rec)
	if err != nil {
		logger.Log.Errorw("failed to update medical record", "history_id", historyID, "err", err)
		return nil, err
	}
	if !ok && len(rec) > 0 {
		return nil, nil
	}

	return svc.Get(ctx, historyID)
}

// Delete soft-deletes a visit record.
func (svc *HistoryService) Delete(ctx context.Context, historyID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "history_id", historyID)
	if err != nil {
		logger.Log.Errorw("failed to delete medical record", "history_id", historyID, "err", err)
	}
	return ok, err
}

// Search finds visit records by diagnosis or notes text.
func (svc *HistoryService) Search(ctx context.Context, term string, limit int) ([]models.MedicalRecord, error) {
	recs, err := svc.repo.Search(ctx, []string{"diagnosis", "notes", "health_status"}, term, limit)
	if err != nil {
		logger.Log.Errorw("failed to search medical records", "term", term, "err", err)
		return nil, err
	}
	return models.DecodeAll[models.MedicalRecord](recs)
}
