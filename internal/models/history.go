package models

import "time"

// PrescriptionLine is a JSON-valued entry in a visit's prescription list.
type PrescriptionLine struct {
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

// MedicalRecord is a stored medical history row for one patient visit.
type MedicalRecord struct {
	HistoryID     string             `json:"history_id"`
	PatientID     string             `json:"patient_id"`
	DoctorID      string             `json:"doctor_id,omitempty"`
	DoctorName    string             `json:"doctor_name"`
	VisitDate     string             `json:"visit_date"`
	Diagnosis     string             `json:"diagnosis,omitempty"`
	Prescriptions []PrescriptionLine `json:"prescriptions,omitempty"`
	HealthStatus  string             `json:"health_status,omitempty"`
	BloodPressure string             `json:"blood_pressure,omitempty"`
	Symptoms      []string           `json:"symptoms,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	FollowUpDate  string             `json:"follow_up_date,omitempty"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// MedicalRecordCreate carries validated input for a new visit record.
type MedicalRecordCreate struct {
	PatientID     string
	DoctorID      string
	DoctorName    string
	VisitDate     string
	Diagnosis     string
	Prescriptions []PrescriptionLine
	HealthStatus  string
	BloodPressure string
	Symptoms      []string
	Notes         string
	FollowUpDate  string
}

// MedicalRecordUpdate carries a partial update; nil fields are left untouched.
type MedicalRecordUpdate struct {
	DoctorID      *string
	DoctorName    *string
	VisitDate     *string
	Diagnosis     *string
	Prescriptions []PrescriptionLine
	HealthStatus  *string
	BloodPressure *string
	Symptoms      []string
	Notes         *string
	FollowUpDate  *string
}

// MedicalRecordPage is one page of visit records with pagination info.
type MedicalRecordPage struct {
	Records    []MedicalRecord `json:"records"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}
