package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abzsd/CareAgents/internal/models"
)

// Error variables
var (
	ErrNoHistory = errors.New("patient has no medical history")
)

// HistoryReader is the medical history surface the summarizer needs.
type HistoryReader interface {
	ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.MedicalRecordPage, error)
}

// RecordSummarizer turns a patient's visit history into a plain-language summary.
type RecordSummarizer struct {
	gen       Generator
	histories HistoryReader
}

// NewRecordSummarizer creates a new RecordSummarizer instance.
func NewRecordSummarizer(gen Generator, histories HistoryReader) *RecordSummarizer {
	return &RecordSummarizer{gen: gen, histories: histories}
}

// Summarize fetches up to the fifty most recent visit records and asks the
// model for a concise summary.
func (s *RecordSummarizer) Summarize(ctx context.Context, patientID string) (string, error) {
	page, err := s.histories.ListByPatient(ctx, patientID, 1, 50)
	if err != nil {
		return "", err
	}
	if page == nil || len(page.Records) == 0 {
		return "", ErrNoHistory
	}

	return s.gen.Generate(ctx, summaryPrompt(page.Records), GenerateConfig{
		System:      "You are a clinical assistant. Summarize medical histories accurately and plainly. Never invent findings.",
		Temperature: 0.2,
		MaxTokens:   600,
	})
}

func summaryPrompt(records []models.MedicalRecord) string {
	var b strings.Builder
	b.WriteString("Summarize the following patient visit history in a short paragraph, ")
	b.WriteString("then list ongoing conditions and active medications as bullets.\n\n")

	for _, rec := range records {
		fmt.Fprintf(&b, "Visit %s", rec.VisitDate)
		if rec.DoctorName != "" {
			fmt.Fprintf(&b, " with %s", rec.DoctorName)
		}
		b.WriteString(":\n")
		if rec.Diagnosis != "" {
			fmt.Fprintf(&b, "  diagnosis: %s\n", rec.Diagnosis)
		}
		if len(rec.Symptoms) > 0 {
			fmt.Fprintf(&b, "  symptoms: %s\n", strings.Join(rec.Symptoms, ", "))
		}
		for _, p := range rec.Prescriptions {
			fmt.Fprintf(&b, "  prescribed: %s %s %s\n", p.MedicationName, p.Dosage, p.Frequency)
		}
		if rec.Notes != "" {
			fmt.Fprintf(&b, "  notes: %s\n", rec.Notes)
		}
	}
	return b.String()
}
