package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// VitalsService manages per-patient vitals readings.
type VitalsService struct {
	repo RecordStore
}

func NewVitalsService(repo RecordStore) *VitalsService {
	return &VitalsService{repo: repo}
}

// Create stores a new vitals reading after range-checking the
// measurements. Validation failures wrap models.ErrValidation.
func (svc *VitalsService) Create(ctx context.Context, in models.VitalSignsCreate) (*models.VitalSigns, error) {
	if err := validateVitalRanges(in.HeartRateBPM, in.RespiratoryRate, in.OxygenSaturation, in.PainLevel, in.BloodPressure); err != nil {
		return nil, err
	}

	rec := repositories.Record{
		"vital_id":   uuid.NewString(),
		"patient_id": in.PatientID,
		"is_active":  true,
	}
	if in.RecordedBy != "" {
		rec["recorded_by"] = in.RecordedBy
	}
	if in.Height != nil {
		rec["height"] = in.Height
	}
	if in.Weight != nil {
		rec["weight"] = in.Weight
	}
	if in.BMI > 0 {
		rec["bmi"] = in.BMI
	}
	if in.Temperature != nil {
		rec["temperature"] = in.Temperature
	}
	if in.BloodPressure != nil {
		rec["blood_pressure"] = in.BloodPressure
	}
	if in.HeartRateBPM > 0 {
		rec["heart_rate_bpm"] = in.HeartRateBPM
	}
	if in.RespiratoryRate > 0 {
		rec["respiratory_rate"] = in.RespiratoryRate
	}
	if in.OxygenSaturation > 0 {
		rec["oxygen_saturation"] = in.OxygenSaturation
	}
	if in.BloodGlucose != nil {
		rec["blood_glucose"] = in.BloodGlucose
	}
	if in.HealthStatus != "" {
		rec["general_health_status"] = string(in.HealthStatus)
	}
	if in.PainLevel != nil {
		rec["pain_level"] = *in.PainLevel
	}
	if in.Notes != "" {
		rec["notes"] = in.Notes
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to record vitals", "patient_id", in.PatientID, "err", err)
		return nil, err
	}

	var vitals models.VitalSigns
	if err := models.Decode(stored, &vitals); err != nil {
		return nil, err
	}
	return &vitals, nil
}

// Get returns one vitals reading by id, or nil when no row matches.
func (svc *VitalsService) Get(ctx context.Context, vitalID string) (*models.VitalSigns, error) {
	rec, err := svc.repo.FindByID(ctx, "vital_id", vitalID)
	if err != nil {
		logger.Log.Errorw("failed to get vitals", "vital_id", vitalID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var vitals models.VitalSigns
	if err := models.Decode(rec, &vitals); err != nil {
		return nil, err
	}
	return &vitals, nil
}

// ListByPatient returns one page of a patient's active vitals readings,
// most recent first.
func (svc *VitalsService) ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.VitalSignsPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	recs, err := svc.repo.Query(ctx,
		`SELECT * FROM health_vitals
		 WHERE patient_id = $1 AND is_active = true
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		patientID, pageSize, offset)
	if err != nil {
		logger.Log.Errorw("failed to list vitals", "patient_id", patientID, "err", err)
		return nil, err
	}

	total, err := svc.repo.Count(ctx, repositories.Record{"patient_id": patientID, "is_active": true})
	if err != nil {
		return nil, err
	}

	vitals, err := models.DecodeAll[models.VitalSigns](recs)
	if err != nil {
		return nil, err
	}

	return &models.VitalSignsPage{
		Vitals:     vitals,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: models.TotalPages(total, pageSize),
	}, nil
}

// Latest returns a patient's most recent active reading, or nil when
// none was ever recorded.
func (svc *VitalsService) Latest(ctx context.Context, patientID string) (*models.VitalSigns, error) {
	recs, err := svc.repo.Query(ctx,
		`SELECT * FROM health_vitals
		 WHERE patient_id = $1 AND is_active = true
		 ORDER BY created_at DESC
		 LIMIT 1`,
		patientID)
	if err != nil {
		logger.Log.Errorw("failed to get latest vitals", "patient_id", patientID, "err", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	var vitals models.VitalSigns
	if err := models.Decode(recs[0], &vitals); err != nil {
		return nil, err
	}
	return &vitals, nil
}

// Update applies a partial update. Returns nil when the reading does
// not exist.
func (svc *VitalsService) Update(ctx context.Context, vitalID string, in models.VitalSignsUpdate) (*models.VitalSigns, error) {
	heartRate, respiratory := 0, 0
	spo2 := 0.0
	if in.HeartRateBPM != nil {
		heartRate = *in.HeartRateBPM
	}
	if in.RespiratoryRate != nil {
		respiratory = *in.RespiratoryRate
	}
	if in.OxygenSaturation != nil {
		spo2 = *in.OxygenSaturation
	}
	if err := validateVitalRanges(heartRate, respiratory, spo2, in.PainLevel, in.BloodPressure); err != nil {
		return nil, err
	}

	rec := repositories.Record{}
	if in.RecordedBy != nil {
		rec["recorded_by"] = *in.RecordedBy
	}
	if in.Height != nil {
		rec["height"] = in.Height
	}
	if in.Weight != nil {
		rec["weight"] = in.Weight
	}
	if in.BMI != nil {
		rec["bmi"] = *in.BMI
	}
	if in.Temperature != nil {
		rec["temperature"] = in.Temperature
	}
	if in.BloodPressure != nil {
		rec["blood_pressure"] = in.BloodPressure
	}
	if in.HeartRateBPM != nil {
		rec["heart_rate_bpm"] = *in.HeartRateBPM
	}
	if in.RespiratoryRate != nil {
		rec["respiratory_rate"] = *in.RespiratoryRate
	}
	if in.OxygenSaturation != nil {
		rec["oxygen_saturation"] = *in.OxygenSaturation
	}
	if in.BloodGlucose != nil {
		rec["blood_glucose"] = in.BloodGlucose
	}
	if in.HealthStatus != nil {
		rec["general_health_status"] = string(*in.HealthStatus)
	}
	if in.PainLevel != nil {
		rec["pain_level"] = *in.PainLevel
	}
	if in.Notes != nil {
		rec["notes"] = *in.Notes
	}

	ok, err := svc.repo.Update(ctx, "vital_id", vitalID, rec)
	if err != nil {
		logger.Log.Errorw("failed to update vitals", "vital_id", vitalID, "err", err)
		return nil, err
	}
	if !ok && len(rec) > 0 {
		return nil, nil
	}

	return svc.Get(ctx, vitalID)
}

// Delete soft-deletes a vitals reading.
func (svc *VitalsService) Delete(ctx context.Context, vitalID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "vital_id", vitalID)
	if err != nil {
		logger.Log.Errorw("failed to delete vitals", "vital_id", vitalID, "err", err)
	}
	return ok, err
}

// validateVitalRanges rejects measurements outside clinical plausibility
// bounds. Zero values mean the measurement was not taken.
func validateVitalRanges(heartRate, respiratory int, spo2 float64, pain *int, bp *models.BloodPressureReading) error {
	if heartRate != 0 && (heartRate < 30 || heartRate > 300) {
		return fmt.Errorf("%w: heart rate %d out of range 30-300", models.ErrValidation, heartRate)
	}
	if respiratory != 0 && (respiratory < 5 || respiratory > 60) {
		return fmt.Errorf("%w: respiratory rate %d out of range 5-60", models.ErrValidation, respiratory)
	}
	if spo2 < 0 || spo2 > 100 {
		return fmt.Errorf("%w: oxygen saturation %.1f out of range 0-100", models.ErrValidation, spo2)
	}
	if pain != nil && (*pain < 0 || *pain > 10) {
		return fmt.Errorf("%w: pain level %d out of range 0-10", models.ErrValidation, *pain)
	}
	if bp != nil {
		if bp.Systolic < 50 || bp.Systolic > 300 {
			return fmt.Errorf("%w: systolic pressure %d out of range 50-300", models.ErrValidation, bp.Systolic)
		}
		if bp.Diastolic < 30 || bp.Diastolic > 200 {
			return fmt.Errorf("%w: diastolic pressure %d out of range 30-200", models.ErrValidation, bp.Diastolic)
		}
	}
	return nil
}
