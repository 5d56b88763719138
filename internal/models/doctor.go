package models

import "time"

// Qualification is a JSON-valued entry in a doctor's qualifications list.
type Qualification struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
}

// Availability is a JSON-valued entry in a doctor's weekly schedule.
type Availability struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Doctor is a stored doctor row.
type Doctor struct {
	DoctorID          string          `json:"doctor_id"`
	UserID            string          `json:"user_id,omitempty"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone,omitempty"`
	Specialization    string          `json:"specialization"`
	LicenseNumber     string          `json:"license_number"`
	LicenseState      string          `json:"license_state,omitempty"`
	Qualifications    []Qualification `json:"qualifications,omitempty"`
	YearsOfExperience int             `json:"years_of_experience,omitempty"`
	ConsultationFee   float64         `json:"consultation_fee,omitempty"`
	Availability      []Availability  `json:"availability,omitempty"`
	LanguagesSpoken   []string        `json:"languages_spoken,omitempty"`
	Rating            float64         `json:"rating,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DisplayName renders the enrichment form used on appointments.
func (d Doctor) DisplayName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

// DoctorCreate carries validated input for a new doctor.
type DoctorCreate struct {
	UserID            string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Specialization    string
	LicenseNumber     string
	LicenseState      string
	Qualifications    []Qualification
	YearsOfExperience int
	ConsultationFee   float64
	Availability      []Availability
	LanguagesSpoken   []string
}

// DoctorUpdate carries a partial update; nil fields are left untouched.
type DoctorUpdate struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Phone             *string
	Specialization    *string
	LicenseNumber     *string
	LicenseState      *string
	Qualifications    []Qualification
	YearsOfExperience *int
	ConsultationFee   *float64
	Availability      []Availability
	LanguagesSpoken   []string
}

// DoctorPage is one page of doctors with pagination info.
type DoctorPage struct {
	Doctors    []Doctor `json:"doctors"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
