package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/abzsd/CareAgents/internal/models"
)

// DoctorLister is the doctor surface the matcher needs.
type DoctorLister interface {
	List(ctx context.Context, page, pageSize int, specialization string) (*models.DoctorPage, error)
}

// DoctorMatch is one ranked recommendation. Name and Specialization are
// filled from the doctor listing, not the model.
type DoctorMatch struct {
	DoctorID       string `json:"doctor_id"`
	Name           string `json:"name,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Reason         string `json:"reason"`
}

// DoctorMatcher recommends doctors for a described complaint.
type DoctorMatcher struct {
	gen     Generator
	doctors DoctorLister
}

// NewDoctorMatcher creates a new DoctorMatcher instance.
func NewDoctorMatcher(gen Generator, doctors DoctorLister) *DoctorMatcher {
	return &DoctorMatcher{gen: gen, doctors: doctors}
}

// Match ranks active doctors against the complaint, best first.
func (m *DoctorMatcher) Match(ctx context.Context, complaint string) ([]DoctorMatch, error) {
	page, err := m.doctors.List(ctx, 1, 100, "")
	if err != nil {
		return nil, err
	}
	if page == nil || len(page.Doctors) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString("A patient describes: ")
	b.WriteString(complaint)
	b.WriteString("\n\nAvailable doctors:\n")
	for _, d := range page.Doctors {
		fmt.Fprintf(&b, "- id=%s %s, %s, %d years experience\n",
			d.DoctorID, d.DisplayName(), d.Specialization, d.YearsOfExperience)
	}
	b.WriteString("\nReturn a JSON array of at most 3 objects {\"doctor_id\", \"reason\"}, best match first. Only use ids from the list.")

	var matches []DoctorMatch
	err = m.gen.GenerateJSON(ctx, b.String(), GenerateConfig{
		System:      "You match patients to medical specialties. Output only the JSON array.",
		Temperature: 0.1,
		MaxTokens:   400,
	}, &matches)
	if err != nil {
		return nil, err
	}

	// Drop ids the model made up; fill names from the listing.
	known := make(map[string]models.Doctor, len(page.Doctors))
	for _, d := range page.Doctors {
		known[d.DoctorID] = d
	}
	filtered := matches[:0]
	for _, match := range matches {
		d, ok := known[match.DoctorID]
		if !ok {
			continue
		}
		match.Name = d.DisplayName()
		match.Specialization = d.Specialization
		filtered = append(filtered, match)
	}
	return filtered, nil
}
