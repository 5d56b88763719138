package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// patientSearchFields are the columns free-text patient lookup scans.
var patientSearchFields = []string{"first_name", "last_name", "email", "phone"}

// PatientService handles patient business logic on top of the generic
// record repository.
type PatientService struct {
	repo RecordStore
}

// NewPatientService creates a new PatientService instance.
func NewPatientService(repo RecordStore) *PatientService {
	return &PatientService{repo: repo}
}

// ageAt computes a calendar-exact age: the year difference minus one when
// the birthday has not occurred yet this year.
func ageAt(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() ||
		(today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// Create stores a new patient, deriving age from date of birth.
func (svc *PatientService) Create(ctx context.Context, in models.PatientCreate) (*models.Patient, error) {
	rec := repositories.Record{
		"patient_id":    uuid.NewString(),
		"first_name":    in.FirstName,
		"last_name":     in.LastName,
		"date_of_birth": in.DateOfBirth.Format("2006-01-02"),
		"age":           ageAt(in.DateOfBirth, time.Now()),
		"gender":        string(in.Gender),
		"is_active":     true,
	}
	if in.UserID != "" {
		rec["user_id"] = in.UserID
	}
	if in.Email != "" {
		rec["email"] = in.Email
	}
	if in.Phone != "" {
		rec["phone"] = in.Phone
	}
	if in.BloodType != "" {
		rec["blood_type"] = string(in.BloodType)
	}
	if in.Address != nil {
		rec["address"] = in.Address
	}
	if in.EmergencyContact != nil {
		rec["emergency_contact"] = in.EmergencyContact
	}
	if in.InsuranceInfo != nil {
		rec["insurance_info"] = in.InsuranceInfo
	}
	if in.Allergies != nil {
		rec["allergies"] = in.Allergies
	}
	if in.ChronicConditions != nil {
		rec["chronic_conditions"] = in.ChronicConditions
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to create patient", "err", err)
		return nil, err
	}

	var patient models.Patient
	if err := models.Decode(stored, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Get returns a patient by id, or nil when no row matches.
func (svc *PatientService) Get(ctx context.Context, patientID string) (*models.Patient, error) {
	rec, err := svc.repo.FindByID(ctx, "patient_id", patientID)
	if err != nil {
		logger.Log.Errorw("failed to get patient", "patient_id", patientID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var patient models.Patient
	if err := models.Decode(rec, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// GetByEmail returns the active patient with the given email, or nil.
func (svc *PatientService) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	return svc.firstByFilter(ctx, repositories.Record{"email": email})
}

// GetByUserID returns the patient profile linked to a user account, or nil.
func (svc *PatientService) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	return svc.firstByFilter(ctx, repositories.Record{"user_id": userID})
}

func (svc *PatientService) firstByFilter(ctx context.Context, filters repositories.Record) (*models.Patient, error) {
	recs, err := svc.repo.FindByFilter(ctx, filters, 1)
	if err != nil {
		logger.Log.Errorw("failed to filter patients", "err", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	var patient models.Patient
	if err := models.Decode(recs[0], &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update applies a partial update, recomputing age when the date of
// birth changes. Returns nil when the patient does not exist.
func (svc *PatientService) Update(ctx context.Context, patientID string, in models.PatientUpdate) (*models.Patient, error) {
	existing, err := svc.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	rec := repositories.Record{}
	if in.FirstName != nil {
		rec["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		rec["last_name"] = *in.LastName
	}
	if in.DateOfBirth != nil {
		rec["date_of_birth"] = in.DateOfBirth.Format("2006-01-02")
		rec["age"] = ageAt(*in.DateOfBirth, time.Now())
	}
	if in.Gender != nil {
		rec["gender"] = string(*in.Gender)
	}
	if in.Email != nil {
		rec["email"] = *in.Email
	}
	if in.Phone != nil {
		rec["phone"] = *in.Phone
	}
	if in.BloodType != nil {
		rec["blood_type"] = string(*in.BloodType)
	}
	if in.Address != nil {
		rec["address"] = in.Address
	}
	if in.EmergencyContact != nil {
		rec["emergency_contact"] = in.EmergencyContact
	}
	if in.InsuranceInfo != nil {
		rec["insurance_info"] = in.InsuranceInfo
	}
	if in.Allergies != nil {
		rec["allergies"] = in.Allergies
	}
	if in.ChronicConditions != nil {
		rec["chronic_conditions"] = in.ChronicConditions
	}

	if _, err := svc.repo.Update(ctx, "patient_id", patientID, rec); err != nil {
		logger.Log.Errorw("failed to update patient", "patient_id", patientID, "err", err)
		return nil, err
	}
	return svc.Get(ctx, patientID)
}

// Delete soft-deletes a patient.
func (svc *PatientService) Delete(ctx context.Context, patientID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "patient_id", patientID)
	if err != nil {
		logger.Log.Errorw("failed to delete patient", "patient_id", patientID, "err", err)
	}
	return ok, err
}

// List returns one page of patients, newest first. With activeOnly
// soft-deleted records are excluded from the page and the total.
func (svc *PatientService) List(ctx context.Context, page, pageSize int, activeOnly bool) (*models.PatientPage, error) {
	if page < 1 {
		page = 1
	}

	var (
		recs  []repositories.Record
		total int
		err   error
	)
	if activeOnly {
		recs, err = svc.repo.Query(ctx,
			`SELECT * FROM patients
			 WHERE is_active = true
			 ORDER BY created_at DESC
			 LIMIT $1 OFFSET $2`,
			pageSize, (page-1)*pageSize)
		if err == nil {
			total, err = svc.repo.Count(ctx, repositories.Record{"is_active": true})
		}
	} else {
		recs, err = svc.repo.FindAll(ctx, pageSize, (page-1)*pageSize)
		if err == nil {
			total, err = svc.repo.Count(ctx, nil)
		}
	}
	if err != nil {
		logger.Log.Errorw("failed to list patients", "err", err)
		return nil, err
	}

	patients, err := models.DecodeAll[models.Patient](recs)
	if err != nil {
		return nil, err
	}
	return &models.PatientPage{
		Patients:   patients,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: models.TotalPages(total, pageSize),
	}, nil
}

// Search matches patients by name, email or phone.
func (svc *PatientService) Search(ctx context.Context, term string, limit int) ([]models.Patient, error) {
	recs, err := svc.repo.Search(ctx, patientSearchFields, term, limit)
	if err != nil {
		logger.Log.Errorw("failed to search patients", "term", term, "err", err)
		return nil, err
	}
	return models.DecodeAll[models.Patient](recs)
}
