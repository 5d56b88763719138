package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abzsd/CareAgents/internal/logger"
)

// HTTPGenerator is a thin JSON-over-HTTP adapter for a model provider.
type HTTPGenerator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGenerator creates a provider client for the given endpoint.
func NewHTTPGenerator(baseURL, apiKey string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model       string  `json:"model,omitempty"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Generate posts the prompt to the provider and returns the completion text.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string, cfg GenerateConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       cfg.Model,
		System:      cfg.System,
		Prompt:      prompt,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Log.Errorw("model provider request failed", "err", err)
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("model provider error: %s", out.Error)
	}
	return out.Text, nil
}

// GenerateJSON asks for a JSON-only completion and decodes it into out.
// Markdown code fences around the payload are tolerated.
func (g *HTTPGenerator) GenerateJSON(ctx context.Context, prompt string, cfg GenerateConfig, out any) error {
	if cfg.System == "" {
		cfg.System = "Respond with valid JSON only. No prose, no markdown."
	}

	text, err := g.Generate(ctx, prompt, cfg)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(stripFences(text)), out)
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
