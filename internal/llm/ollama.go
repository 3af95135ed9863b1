package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// OllamaResponder asks a local Ollama model for the reply using the
// generate endpoint in JSON mode.
type OllamaResponder struct {
	logger  zerolog.Logger
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaResponder creates an Ollama-backed responder.
func NewOllamaResponder(logger zerolog.Logger, cfg *Config) *OllamaResponder {
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := cfg.OllamaURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	model := cfg.OllamaModel
	if model == "" {
		model = defaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OllamaResponder{
		logger:  logger.With().Str("responder", "ollama").Logger(),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"` // "json" for JSON mode
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Available checks that Ollama is reachable and serves at least one model.
func (r *OllamaResponder) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, r.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	return len(tags.Models) > 0
}

// Respond sends the prompt to /api/generate and parses the JSON reply.
func (r *OllamaResponder) Respond(ctx context.Context, prompt string) (Reply, error) {
	body := ollamaGenerateRequest{
		Model:   r.model,
		Prompt:  prompt,
		System:  systemPrompt,
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: 0.7},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	r.logger.Debug().
		Str("model", r.model).
		Int("promptLen", len(prompt)).
		Msg("Requesting reply from Ollama")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Reply{}, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(errBody))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return Reply{}, fmt.Errorf("decode response: %w", err)
	}

	reply, err := parseReply(genResp.Response)
	if err != nil {
		return Reply{}, err
	}

	r.logger.Info().
		Str("emotion", string(reply.Emotion)).
		Int("textLen", len(reply.Text)).
		Msg("Got reply from Ollama")
	return reply, nil
}
