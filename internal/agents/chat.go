package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abzsd/CareAgents/internal/logger"
)

// Summarizer is the record-summary surface the orchestrator dispatches to.
type Summarizer interface {
	Summarize(ctx context.Context, patientID string) (string, error)
}

// Matcher is the doctor-recommendation surface the orchestrator dispatches to.
type Matcher interface {
	Match(ctx context.Context, complaint string) ([]DoctorMatch, error)
}

// ChatOrchestrator routes an incoming chat message to the right agent and
// streams the reply in chunks through the emit callback.
type ChatOrchestrator struct {
	gen        Generator
	summarizer Summarizer
	matcher    Matcher
}

// NewChatOrchestrator creates a new ChatOrchestrator instance.
func NewChatOrchestrator(gen Generator, summarizer Summarizer, matcher Matcher) *ChatOrchestrator {
	return &ChatOrchestrator{gen: gen, summarizer: summarizer, matcher: matcher}
}

const chatChunkWords = 12

// HandleMessage answers one chat message for a patient. emit is called once
// per reply chunk, in order.
func (c *ChatOrchestrator) HandleMessage(ctx context.Context, patientID, message string, emit func(chunk string) error) error {
	reply, err := c.dispatch(ctx, patientID, message)
	if err != nil {
		return err
	}

	for _, chunk := range splitChunks(reply, chatChunkWords) {
		if err := emit(chunk); err != nil {
			logger.Log.Errorw("chat stream interrupted", "patient_id", patientID, "err", err)
			return err
		}
	}
	return nil
}

func (c *ChatOrchestrator) dispatch(ctx context.Context, patientID, message string) (string, error) {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "summar") || strings.Contains(lower, "my history") || strings.Contains(lower, "medical record"):
		summary, err := c.summarizer.Summarize(ctx, patientID)
		if errors.Is(err, ErrNoHistory) {
			return "You don't have any medical history on file yet.", nil
		}
		return summary, err

	case strings.Contains(lower, "doctor") || strings.Contains(lower, "specialist") || strings.Contains(lower, "who should i see"):
		matches, err := c.matcher.Match(ctx, message)
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "I couldn't find a suitable doctor right now. Please try describing your symptoms differently.", nil
		}
		var b strings.Builder
		b.WriteString("Here's who I'd suggest:\n")
		for i, match := range matches {
			fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, match.Name, match.Specialization, match.Reason)
		}
		return b.String(), nil

	default:
		return c.gen.Generate(ctx, message, GenerateConfig{
			System:      "You are a helpful healthcare assistant. Answer general questions briefly. Recommend seeing a doctor for anything diagnostic. Never prescribe.",
			Temperature: 0.7,
			MaxTokens:   500,
		})
	}
}

// splitChunks breaks text into word-bounded chunks of at most n words.
func splitChunks(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += n {
		end := start + n
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[start:end], " ")
		if end < len(words) {
			chunk += " "
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
