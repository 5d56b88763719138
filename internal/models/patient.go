package models

import (
	"fmt"
	"time"
)

// Gender is the stored string tag for a patient's gender.
type Gender string

const (
	GenderMale           Gender = "Male"
	GenderFemale         Gender = "Female"
	GenderOther          Gender = "Other"
	GenderPreferNotToSay Gender = "Prefer not to say"
)

// ParseGender validates a gender tag coming from a request body.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return Gender(s), nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrValidation, s)
}

// BloodType is the stored string tag for a blood type.
type BloodType string

const (
	BloodAPositive  BloodType = "A+"
	BloodANegative  BloodType = "A-"
	BloodBPositive  BloodType = "B+"
	BloodBNegative  BloodType = "B-"
	BloodABPositive BloodType = "AB+"
	BloodABNegative BloodType = "AB-"
	BloodOPositive  BloodType = "O+"
	BloodONegative  BloodType = "O-"
)

// ParseBloodType validates a blood type tag coming from a request body.
func ParseBloodType(s string) (BloodType, error) {
	switch BloodType(s) {
	case BloodAPositive, BloodANegative, BloodBPositive, BloodBNegative,
		BloodABPositive, BloodABNegative, BloodOPositive, BloodONegative:
		return BloodType(s), nil
	}
	return "", fmt.Errorf("%w: unknown blood type %q", ErrValidation, s)
}

// Address is a JSON-valued column on patients and doctors.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

// EmergencyContact is a JSON-valued column on patients.
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// InsuranceInfo is a JSON-valued column on patients.
type InsuranceInfo struct {
	Provider     string `json:"provider,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
	GroupNumber  string `json:"group_number,omitempty"`
}

// Patient is a stored patient row.
type Patient struct {
	PatientID         string            `json:"patient_id"`
	UserID            string            `json:"user_id,omitempty"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	DateOfBirth       string            `json:"date_of_birth"`
	Age               int               `json:"age,omitempty"`
	Gender            Gender            `json:"gender"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Address           *Address          `json:"address,omitempty"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact,omitempty"`
	BloodType         BloodType         `json:"blood_type,omitempty"`
	Allergies         []string          `json:"allergies,omitempty"`
	ChronicConditions []string          `json:"chronic_conditions,omitempty"`
	InsuranceInfo     *InsuranceInfo    `json:"insurance_info,omitempty"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// PatientCreate carries validated input for a new patient.
type PatientCreate struct {
	UserID            string
	FirstName         string
	LastName          string
	DateOfBirth       time.Time
	Gender            Gender
	Email             string
	Phone             string
	Address           *Address
	EmergencyContact  *EmergencyContact
	BloodType         BloodType
	Allergies         []string
	ChronicConditions []string
	InsuranceInfo     *InsuranceInfo
}

// PatientUpdate carries a partial update; nil fields are left untouched.
type PatientUpdate struct {
	FirstName         *string
	LastName          *string
	DateOfBirth       *time.Time
	Gender            *Gender
	Email             *string
	Phone             *string
	Address           *Address
	EmergencyContact  *EmergencyContact
	BloodType         *BloodType
	Allergies         []string
	ChronicConditions []string
	InsuranceInfo     *InsuranceInfo
}

// PatientPage is one page of patients with pagination info.
type PatientPage struct {
	Patients   []Patient `json:"patients"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
