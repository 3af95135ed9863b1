// OpenAI TTS provider using the /v1/audio/speech endpoint.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIProvider implements TTS using the OpenAI speech API.
type OpenAIProvider struct {
	logger zerolog.Logger
	config *OpenAIConfig
	client *http.Client
}

// OpenAIConfig holds OpenAI TTS configuration.
type OpenAIConfig struct {
	APIKey  string        `json:"api_key"`
	Model   string        `json:"model"`    // tts-1 or tts-1-hd
	Voice   string        `json:"voice"`    // alloy, echo, fable, onyx, nova, shimmer
	BaseURL string        `json:"base_url"` // override for testing
	Timeout time.Duration `json:"timeout"`
}

// DefaultOpenAIConfig returns sensible defaults for OpenAI TTS.
func DefaultOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   "tts-1",
		Voice:   "nova",
		BaseURL: defaultOpenAIBaseURL,
		Timeout: 60 * time.Second,
	}
}

// NewOpenAIProvider creates an OpenAI TTS provider.
func NewOpenAIProvider(logger zerolog.Logger, config *OpenAIConfig) *OpenAIProvider {
	if config == nil {
		config = DefaultOpenAIConfig()
	}
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.Model == "" {
		config.Model = "tts-1"
	}
	if config.Voice == "" {
		config.Voice = "nova"
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenAIBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &OpenAIProvider{
		logger: logger.With().Str("provider", "openai").Logger(),
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable reports whether an API key is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.config.APIKey != ""
}

// openAISpeechRequest is the request body for /v1/audio/speech.
type openAISpeechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize renders text via the OpenAI API and writes the WAV response
// to req.OutputPath.
func (p *OpenAIProvider) Synthesize(ctx context.Context, req *Request) error {
	if !p.IsAvailable() {
		return fmt.Errorf("openai: no API key: %w", ErrUnavailable)
	}

	voice := req.Voice
	if voice == "" {
		voice = p.config.Voice
	}

	body := openAISpeechRequest{
		Model:          p.config.Model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: "wav",
		Speed:          speedForRate(req.Rate),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	p.logger.Debug().
		Str("model", body.Model).
		Str("voice", body.Voice).
		Float64("speed", body.Speed).
		Int("textLen", len(req.Text)).
		Msg("Requesting OpenAI speech synthesis")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(errBody)).
			Msg("OpenAI speech request rejected")
		return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(errBody))
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}

	p.logger.Info().
		Str("path", req.OutputPath).
		Int64("bytes", written).
		Msg("OpenAI synthesis complete")
	return nil
}

// speedForRate maps a words-per-minute rate onto OpenAI's speed multiplier,
// where 1.0 corresponds to the 175 wpm baseline. The API accepts 0.25-4.0.
func speedForRate(rate int) float64 {
	if rate <= 0 {
		return 1.0
	}
	speed := float64(rate) / 175.0
	if speed < 0.25 {
		speed = 0.25
	}
	if speed > 4.0 {
		speed = 4.0
	}
	return speed
}
