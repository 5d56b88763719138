package agents

import "context"

// GenerateConfig holds per-call generation parameters.
type GenerateConfig struct {
	Model       string
	System      string
	Temperature float64
	MaxTokens   int
}

// Generator produces model completions for agent prompts.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerateConfig) (string, error)
	GenerateJSON(ctx context.Context, prompt string, cfg GenerateConfig, out any) error
}
