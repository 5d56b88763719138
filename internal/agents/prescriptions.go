package agents

import (
	"context"
	"fmt"

	"github.com/abzsd/CareAgents/internal/models"
)

// PrescriptionParser extracts structured prescription lines from a
// photographed or scanned prescription.
type PrescriptionParser struct {
	gen Generator
}

// NewPrescriptionParser creates a new PrescriptionParser instance.
func NewPrescriptionParser(gen Generator) *PrescriptionParser {
	return &PrescriptionParser{gen: gen}
}

// ParseImage sends the base64-encoded image to the model and decodes the
// returned prescription lines.
func (p *PrescriptionParser) ParseImage(ctx context.Context, imageBase64, mimeType string) ([]models.PrescriptionLine, error) {
	prompt := fmt.Sprintf(
		`Extract every medication from this prescription image as a JSON array of objects
with keys medication_name, dosage, frequency, duration, instructions. Use empty
strings for unreadable fields. Image (%s, base64): %s`,
		mimeType, imageBase64)

	var lines []models.PrescriptionLine
	err := p.gen.GenerateJSON(ctx, prompt, GenerateConfig{
		System:      "You read prescriptions. Output only the JSON array. Do not guess medication names you cannot read.",
		Temperature: 0,
		MaxTokens:   1000,
	}, &lines)
	if err != nil {
		return nil, err
	}
	return lines, nil
}
