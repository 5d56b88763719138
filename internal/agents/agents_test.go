package agents_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abzsd/CareAgents/internal/agents"
	"github.com/abzsd/CareAgents/internal/models"
)

// fakeGenerator returns canned completions and records prompts.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ agents.GenerateConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, prompt string, _ agents.GenerateConfig, out any) error {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.reply), out)
}

type fakeHistories struct {
	page *models.MedicalRecordPage
	err  error
}

func (f *fakeHistories) ListByPatient(_ context.Context, _ string, _, _ int) (*models.MedicalRecordPage, error) {
	return f.page, f.err
}

type fakeDoctors struct {
	page *models.DoctorPage
	err  error
}

func (f *fakeDoctors) List(_ context.Context, _, _ int, _ string) (*models.DoctorPage, error) {
	return f.page, f.err
}

func TestHTTPGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req["prompt"])

		json.NewEncoder(w).Encode(map[string]string{"text": "world"})
	}))
	defer srv.Close()

	gen := agents.NewHTTPGenerator(srv.URL, "test-key", 5*time.Second)

	text, err := gen.Generate(context.Background(), "hello", agents.GenerateConfig{})
	require.NoError(t, err)
	assert.Equal(t, "world", text)
}

func TestHTTPGenerator_Generate_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	gen := agents.NewHTTPGenerator(srv.URL, "", 5*time.Second)

	_, err := gen.Generate(context.Background(), "hello", agents.GenerateConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPGenerator_GenerateJSON_StripsFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"text": "```json\n{\"answer\": 42}\n```",
		})
	}))
	defer srv.Close()

	gen := agents.NewHTTPGenerator(srv.URL, "", 5*time.Second)

	var out struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, gen.GenerateJSON(context.Background(), "q", agents.GenerateConfig{}, &out))
	assert.Equal(t, 42, out.Answer)
}

func TestRecordSummarizer_Summarize(t *testing.T) {
	gen := &fakeGenerator{reply: "Patient is generally healthy."}
	histories := &fakeHistories{page: &models.MedicalRecordPage{
		Records: []models.MedicalRecord{
			{
				VisitDate:  "2026-08-01",
				DoctorName: "Dr. Alice Brown",
				Diagnosis:  "Seasonal allergies",
				Symptoms:   []string{"sneezing"},
				Prescriptions: []models.PrescriptionLine{
					{MedicationName: "Loratadine", Dosage: "10mg", Frequency: "daily"},
				},
			},
		},
	}}

	s := agents.NewRecordSummarizer(gen, histories)

	summary, err := s.Summarize(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Patient is generally healthy.", summary)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Seasonal allergies")
	assert.Contains(t, gen.prompts[0], "Loratadine")
	assert.Contains(t, gen.prompts[0], "Dr. Alice Brown")
}

func TestRecordSummarizer_NoHistory(t *testing.T) {
	s := agents.NewRecordSummarizer(&fakeGenerator{}, &fakeHistories{page: &models.MedicalRecordPage{}})

	_, err := s.Summarize(context.Background(), "p-1")
	assert.ErrorIs(t, err, agents.ErrNoHistory)
}

func TestPrescriptionParser_ParseImage(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"medication_name":"Amoxicillin","dosage":"500mg","frequency":"3x daily"}]`}
	p := agents.NewPrescriptionParser(gen)

	lines, err := p.ParseImage(context.Background(), "aGVsbG8=", "image/png")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Amoxicillin", lines[0].MedicationName)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "aGVsbG8=")
}

func TestDoctorMatcher_Match_FiltersUnknownIDs(t *testing.T) {
	gen := &fakeGenerator{reply: `[
		{"doctor_id":"d-1","reason":"cardiology fits chest pain"},
		{"doctor_id":"made-up","reason":"hallucinated"}
	]`}
	doctors := &fakeDoctors{page: &models.DoctorPage{
		Doctors: []models.Doctor{
			{DoctorID: "d-1", FirstName: "Alice", LastName: "Brown", Specialization: "Cardiology"},
		},
	}}

	m := agents.NewDoctorMatcher(gen, doctors)

	matches, err := m.Match(context.Background(), "chest pain when climbing stairs")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "d-1", matches[0].DoctorID)
	assert.Equal(t, "Dr. Alice Brown", matches[0].Name)
	assert.Equal(t, "Cardiology", matches[0].Specialization)
}

func TestDoctorMatcher_Match_NoDoctors(t *testing.T) {
	m := agents.NewDoctorMatcher(&fakeGenerator{}, &fakeDoctors{page: &models.DoctorPage{}})

	matches, err := m.Match(context.Background(), "headache")
	require.NoError(t, err)
	assert.Nil(t, matches)
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	return f.summary, f.err
}

type fakeMatcher struct {
	matches []agents.DoctorMatch
	err     error
}

func (f *fakeMatcher) Match(_ context.Context, _ string) ([]agents.DoctorMatch, error) {
	return f.matches, f.err
}

func collectChunks(chunks *[]string) func(string) error {
	return func(chunk string) error {
		*chunks = append(*chunks, chunk)
		return nil
	}
}

func TestChatOrchestrator_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantContain string
	}{
		{
			name:        "summary request goes to summarizer",
			message:     "Can you summarize my history?",
			wantContain: "Overall healthy",
		},
		{
			name:        "doctor request goes to matcher",
			message:     "Which doctor should I see for back pain?",
			wantContain: "Dr. Alice Brown",
		},
		{
			name:        "anything else goes to the model",
			message:     "What is a normal resting heart rate?",
			wantContain: "60 to 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := agents.NewChatOrchestrator(
				&fakeGenerator{reply: "Typically 60 to 100 beats per minute."},
				&fakeSummarizer{summary: "Overall healthy with mild seasonal allergies."},
				&fakeMatcher{matches: []agents.DoctorMatch{
					{DoctorID: "d-1", Name: "Dr. Alice Brown", Specialization: "Orthopedics", Reason: "back pain specialist"},
				}},
			)

			var chunks []string
			err := orch.HandleMessage(context.Background(), "p-1", tt.message, collectChunks(&chunks))
			require.NoError(t, err)
			require.NotEmpty(t, chunks)
			assert.Contains(t, strings.Join(chunks, ""), tt.wantContain)
		})
	}
}

func TestChatOrchestrator_EmptyHistoryFallback(t *testing.T) {
	orch := agents.NewChatOrchestrator(
		&fakeGenerator{},
		&fakeSummarizer{err: agents.ErrNoHistory},
		&fakeMatcher{},
	)

	var chunks []string
	err := orch.HandleMessage(context.Background(), "p-1", "summarize my records", collectChunks(&chunks))
	require.NoError(t, err)
	assert.Contains(t, strings.Join(chunks, ""), "don't have any medical history")
}

func TestChatOrchestrator_EmitErrorStopsStream(t *testing.T) {
	orch := agents.NewChatOrchestrator(
		&fakeGenerator{reply: strings.Repeat("word ", 40)},
		&fakeSummarizer{},
		&fakeMatcher{},
	)

	calls := 0
	err := orch.HandleMessage(context.Background(), "p-1", "hello", func(string) error {
		calls++
		return errors.New("connection gone")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestChatOrchestrator_ChunksInOrder(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 10) // 30 words
	orch := agents.NewChatOrchestrator(
		&fakeGenerator{reply: text},
		&fakeSummarizer{},
		&fakeMatcher{},
	)

	var chunks []string
	require.NoError(t, orch.HandleMessage(context.Background(), "p-1", "hi", collectChunks(&chunks)))

	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, ""))
}
