package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abzsd/CareAgents/internal/agents"
	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/models"
)

// Summarizer defines the record summarization surface.
type Summarizer interface {
	Summarize(ctx context.Context, patientID string) (string, error)
}

// PrescriptionParser defines the prescription image parsing surface.
type PrescriptionParser interface {
	ParseImage(ctx context.Context, imageBase64, mimeType string) ([]models.PrescriptionLine, error)
}

// DoctorMatcher defines the doctor recommendation surface.
type DoctorMatcher interface {
	Match(ctx context.Context, complaint string) ([]agents.DoctorMatch, error)
}

// SummaryResponse represents a generated history summary
// swagger:model SummaryResponse
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// NewSummarizeHistoryHandler returns an HTTP handler for history summarization.
// @Summary Summarize a patient's medical history
// @Description Generates a plain-language summary of the patient's visit records.
// @Tags agents
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {object} handlers.SummaryResponse "Summary"
// @Failure 404 {object} handlers.ErrorResponse "No history on file"
// @Security BearerAuth
// @Router /patients/{patient_id}/summary [get]
func NewSummarizeHistoryHandler(svc Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patient_id")

		summary, err := svc.Summarize(r.Context(), patientID)
		if err != nil {
			if errors.Is(err, agents.ErrNoHistory) {
				writeError(w, http.StatusNotFound, "No medical history on file")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
	}
}

// ParsePrescriptionRequest represents the JSON body for prescription parsing
// swagger:model ParsePrescriptionRequest
type ParsePrescriptionRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type,omitempty"`
}

// NewParsePrescriptionHandler returns an HTTP handler for prescription image parsing.
// @Summary Parse a prescription image
// @Description Extracts structured medication lines from a photographed prescription.
// @Tags agents
// @Accept json
// @Produce json
// @Param parsePrescriptionRequest body handlers.ParsePrescriptionRequest true "Base64 image"
// @Success 200 {array} models.PrescriptionLine "Extracted medications"
// @Failure 400 {object} handlers.ErrorResponse "Missing image"
// @Security BearerAuth
// @Router /agents/prescriptions/parse [post]
func NewParsePrescriptionHandler(svc PrescriptionParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParsePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.ImageBase64 == "" {
			writeError(w, http.StatusBadRequest, "image_base64 is required")
			return
		}
		if req.MimeType == "" {
			req.MimeType = "image/jpeg"
		}

		lines, err := svc.ParseImage(r.Context(), req.ImageBase64, req.MimeType)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, lines)
	}
}

// MatchDoctorRequest represents the JSON body for doctor matching
// swagger:model MatchDoctorRequest
type MatchDoctorRequest struct {
	Complaint string `json:"complaint"`
}

// NewMatchDoctorHandler returns an HTTP handler for doctor recommendations.
// @Summary Recommend doctors for a complaint
// @Tags agents
// @Accept json
// @Produce json
// @Param matchDoctorRequest body handlers.MatchDoctorRequest true "Patient complaint"
// @Success 200 {array} agents.DoctorMatch "Ranked recommendations"
// @Failure 400 {object} handlers.ErrorResponse "Missing complaint"
// @Security BearerAuth
// @Router /agents/doctors/match [post]
func NewMatchDoctorHandler(svc DoctorMatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MatchDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Complaint == "" {
			writeError(w, http.StatusBadRequest, "complaint is required")
			return
		}

		matches, err := svc.Match(r.Context(), req.Complaint)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if matches == nil {
			matches = []agents.DoctorMatch{}
		}

		writeJSON(w, http.StatusOK, matches)
	}
}
