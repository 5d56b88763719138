package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

var doctorSearchFields = []string{"first_name", "last_name", "specialization", "email"}

// DoctorService handles doctor business logic.
type DoctorService struct {
	repo RecordStore
}

// NewDoctorService creates a new DoctorService instance.
func NewDoctorService(repo RecordStore) *DoctorService {
	return &DoctorService{repo: repo}
}

// Create stores a new doctor.
func (svc *DoctorService) Create(ctx context.Context, in models.DoctorCreate) (*models.Doctor, error) {
	rec := repositories.Record{
		"doctor_id":      uuid.NewString(),
		"first_name":     in.FirstName,
		"last_name":      in.LastName,
		"email":          in.Email,
		"specialization": in.Specialization,
		"license_number": in.LicenseNumber,
		"is_active":      true,
	}
	if in.UserID != "" {
		rec["user_id"] = in.UserID
	}
	if in.Phone != "" {
		rec["phone"] = in.Phone
	}
	if in.LicenseState != "" {
		rec["license_state"] = in.LicenseState
	}
	if in.YearsOfExperience > 0 {
		rec["years_of_experience"] = in.YearsOfExperience
	}
	if in.ConsultationFee > 0 {
		rec["consultation_fee"] = in.ConsultationFee
	}
	if in.Qualifications != nil {
		rec["qualifications"] = in.Qualifications
	}
	if in.Availability != nil {
		rec["availability"] = in.Availability
	}
	if in.LanguagesSpoken != nil {
		rec["languages_spoken"] = in.LanguagesSpoken
	}

	stored, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to create doctor", "err", err)
		return nil, err
	}

	var doctor models.Doctor
	if err := models.Decode(stored, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Get returns a doctor by id, or nil when no row matches.
func (svc *DoctorService) Get(ctx context.Context, doctorID string) (*models.Doctor, error) {
	rec, err := svc.repo.FindByID(ctx, "doctor_id", doctorID)
	if err != nil {
		logger.Log.Errorw("failed to get doctor", "doctor_id", doctorID, "err", err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var doctor models.Doctor
	if err := models.Decode(rec, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// GetByUserID returns the doctor profile linked to a user account, or nil.
func (svc *DoctorService) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	recs, err := svc.repo.FindByFilter(ctx, repositories.Record{"user_id": userID}, 1)
	if err != nil {
		logger.Log.Errorw("failed to filter doctors", "err", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	var doctor models.Doctor
	if err := models.Decode(recs[0], &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Update applies a partial update. Returns nil when the doctor does not exist.
func (svc *DoctorService) Update(ctx context.Context, doctorID string, in models.DoctorUpdate) (*models.Doctor, error) {
	existing, err := svc.Get(ctx, doctorID)
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
	if in.Email != nil {
		rec["email"] = *in.Email
	}
	if in.Phone != nil {
		rec["phone"] = *in.Phone
	}
	if in.Specialization != nil {
		rec["specialization"] = *in.Specialization
	}
	if in.LicenseNumber != nil {
		rec["license_number"] = *in.LicenseNumber
	}
	if in.LicenseState != nil {
		rec["license_state"] = *in.LicenseState
	}
	if in.YearsOfExperience != nil {
		rec["years_of_experience"] = *in.YearsOfExperience
	}
	if in.ConsultationFee != nil {
		rec["consultation_fee"] = *in.ConsultationFee
	}
	if in.Qualifications != nil {
		rec["qualifications"] = in.Qualifications
	}
	if in.Availability != nil {
		rec["availability"] = in.Availability
	}
	if in.LanguagesSpoken != nil {
		rec["languages_spoken"] = in.LanguagesSpoken
	}

	if _, err := svc.repo.Update(ctx, "doctor_id", doctorID, rec); err != nil {
		logger.Log.Errorw("failed to update doctor", "doctor_id", doctorID, "err", err)
		return nil, err
	}
	return svc.Get(ctx, doctorID)
}

// Delete soft-deletes a doctor.
func (svc *DoctorService) Delete(ctx context.Context, doctorID string) (bool, error) {
	ok, err := svc.repo.SoftDelete(ctx, "doctor_id", doctorID)
	if err != nil {
		logger.Log.Errorw("failed to delete doctor", "doctor_id", doctorID, "err", err)
	}
	return ok, err
}

// List returns one page of doctors, optionally narrowed to a specialization.
func (svc *DoctorService) List(ctx context.Context, page, pageSize int, specialization string) (*models.DoctorPage, error) {
	if page < 1 {
		page = 1
	}

	filters := repositories.Record{"is_active": true}
	query := `SELECT * FROM doctors
		 WHERE is_active = true
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`
	args := []any{pageSize, (page - 1) * pageSize}
	if specialization != "" {
		filters["specialization"] = specialization
		query = `SELECT * FROM doctors
		 WHERE is_active = true AND specialization = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`
		args = []any{specialization, pageSize, (page - 1) * pageSize}
	}

	recs, err := svc.repo.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Errorw("failed to list doctors", "err", err)
		return nil, err
	}
	total, err := svc.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	doctors, err := models.DecodeAll[models.Doctor](recs)
	if err != nil {
		return nil, err
	}
	return &models.DoctorPage{
		Doctors:    doctors,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: models.TotalPages(total, pageSize),
	}, nil
}

// Search matches doctors by name, specialization or email.
func (svc *DoctorService) Search(ctx context.Context, term string, limit int) ([]models.Doctor, error) {
	recs, err := svc.repo.Search(ctx, doctorSearchFields, term, limit)
	if err != nil {
		logger.Log.Errorw("failed to search doctors", "term", term, "err", err)
		return nil, err
	}
	return models.DecodeAll[models.Doctor](recs)
}
