// Package llm turns a user prompt into a short spoken reply tagged with
// an emotion the prosody layer understands.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/cortexvoice/internal/prosody"
)

// systemPrompt is the persona every provider speaks with. The reply must
// come back as JSON matching replySchema.
const systemPrompt = "You are a friendly speaking assistant in a graphics demo. " +
	"Given a user prompt, produce:\n" +
	"  - text: what the assistant should say out loud\n" +
	"  - emotion: one of ['neutral','happy','sad','angry','excited','energetic','gloomy'] " +
	"describing the overall tone of the reply.\n" +
	"Keep replies 1-2 sentences. Respond ONLY as JSON."

// replySchemaName labels the structured-output schema for providers that
// support named response formats.
const replySchemaName = "speech_with_emotion"

// Reply is what the assistant should say and how it should sound.
type Reply struct {
	Text    string
	Emotion prosody.Emotion
}

// Responder produces a spoken reply for a user prompt.
type Responder interface {
	Respond(ctx context.Context, prompt string) (Reply, error)
}

// Config selects and tunes a responder. Zero values mean provider defaults.
type Config struct {
	Provider      string // openai or ollama
	Model         string // chat model for openai
	OpenAIAPIKey  string
	OpenAIBaseURL string // override for testing
	OllamaURL     string
	OllamaModel   string
	Timeout       time.Duration
}

// New builds the responder named by cfg.Provider. An empty provider
// defaults to openai.
func New(cfg *Config, logger zerolog.Logger) (Responder, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIResponder(logger, cfg), nil
	case "ollama":
		return NewOllamaResponder(logger, cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// replySchema is the JSON schema both providers constrain the model with.
func replySchema() map[string]any {
	allowed := prosody.Allowed()
	emotions := make([]string, 0, len(allowed))
	for _, e := range allowed {
		emotions = append(emotions, string(e))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":    map[string]any{"type": "string"},
			"emotion": map[string]any{"type": "string", "enum": emotions},
		},
		"required":             []string{"text", "emotion"},
		"additionalProperties": false,
	}
}

type replyPayload struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// parseReply decodes a model's JSON body. The reply text is trimmed; an
// emotion outside the allowed set collapses to neutral rather than
// failing the exchange.
func parseReply(raw string) (Reply, error) {
	var payload replyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Reply{}, fmt.Errorf("decoding reply %q: %w", raw, err)
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return Reply{}, errors.New("reply contained no text")
	}

	emotion, ok := prosody.Parse(payload.Emotion)
	if !ok {
		emotion = prosody.EmotionNeutral
	}
	return Reply{Text: text, Emotion: emotion}, nil
}
