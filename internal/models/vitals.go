package models

import (
	"fmt"
	"time"
)

// HealthStatusTag is the stored string tag for a general health rating.
type HealthStatusTag string

const (
	HealthExcellent HealthStatusTag = "excellent"
	HealthGood      HealthStatusTag = "good"
	HealthFair      HealthStatusTag = "fair"
	HealthPoor      HealthStatusTag = "poor"
)

// ParseHealthStatus validates a health status tag coming from a request body.
func ParseHealthStatus(s string) (HealthStatusTag, error) {
	switch HealthStatusTag(s) {
	case HealthExcellent, HealthGood, HealthFair, HealthPoor:
		return HealthStatusTag(s), nil
	}
	return "", fmt.Errorf("%w: unknown health status %q", ErrValidation, s)
}

// Measurement is a value with its unit, stored as a JSON-valued column.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// BloodPressureReading is one blood pressure measurement in mmHg.
type BloodPressureReading struct {
	Systolic  int    `json:"systolic"`
	Diastolic int    `json:"diastolic"`
	Arm       string `json:"arm,omitempty"`
	Position  string `json:"position,omitempty"`
}

// BloodGlucose is one blood glucose measurement.
type BloodGlucose struct {
	Value           float64 `json:"value"`
	Unit            string  `json:"unit,omitempty"`
	MeasurementType string  `json:"measurement_type,omitempty"`
}

// VitalSigns is one recorded set of vitals for a patient.
type VitalSigns struct {
	VitalID          string                `json:"vital_id"`
	PatientID        string                `json:"patient_id"`
	RecordedBy       string                `json:"recorded_by,omitempty"`
	Height           *Measurement          `json:"height,omitempty"`
	Weight           *Measurement          `json:"weight,omitempty"`
	BMI              float64               `json:"bmi,omitempty"`
	Temperature      *Measurement          `json:"temperature,omitempty"`
	BloodPressure    *BloodPressureReading `json:"blood_pressure,omitempty"`
	HeartRateBPM     int                   `json:"heart_rate_bpm,omitempty"`
	RespiratoryRate  int                   `json:"respiratory_rate,omitempty"`
	OxygenSaturation float64               `json:"oxygen_saturation,omitempty"`
	BloodGlucose     *BloodGlucose         `json:"blood_glucose,omitempty"`
	HealthStatus     HealthStatusTag       `json:"general_health_status,omitempty"`
	PainLevel        *int                  `json:"pain_level,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	IsActive         bool                  `json:"is_active"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// VitalSignsCreate carries validated input for a new vitals reading.
type VitalSignsCreate struct {
	PatientID        string
	RecordedBy       string
	Height           *Measurement
	Weight           *Measurement
	BMI              float64
	Temperature      *Measurement
	BloodPressure    *BloodPressureReading
	HeartRateBPM     int
	RespiratoryRate  int
	OxygenSaturation float64
	BloodGlucose     *BloodGlucose
	HealthStatus     HealthStatusTag
	PainLevel        *int
	Notes            string
}

// VitalSignsUpdate carries a partial update; nil fields are left untouched.
type VitalSignsUpdate struct {
	RecordedBy       *string
	Height           *Measurement
	Weight           *Measurement
	BMI              *float64
	Temperature      *Measurement
	BloodPressure    *BloodPressureReading
	HeartRateBPM     *int
	RespiratoryRate  *int
	OxygenSaturation *float64
	BloodGlucose     *BloodGlucose
	HealthStatus     *HealthStatusTag
	PainLevel        *int
	Notes            *string
}

// VitalSignsPage is one page of vitals readings with pagination info.
type VitalSignsPage struct {
	Vitals     []VitalSigns `json:"vitals"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
