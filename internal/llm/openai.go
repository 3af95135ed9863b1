package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
)

const defaultOpenAIModel = "gpt-4.1-mini"

// OpenAIResponder asks an OpenAI chat model for the reply, constrained
// to the speech_with_emotion schema via structured outputs.
type OpenAIResponder struct {
	logger zerolog.Logger
	model  string
	client *openai.Client
}

// NewOpenAIResponder creates an OpenAI-backed responder. The API key
// falls back to the OPENAI_API_KEY environment variable.
func NewOpenAIResponder(logger zerolog.Logger, cfg *Config) *OpenAIResponder {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.OpenAIBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}

	client := openai.NewClient(reqOpts...)
	return &OpenAIResponder{
		logger: logger.With().Str("responder", "openai").Logger(),
		model:  model,
		client: &client,
	}
}

// Respond sends the prompt as a chat completion and parses the JSON reply.
func (r *OpenAIResponder) Respond(ctx context.Context, prompt string) (Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Opt(0.7),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   replySchemaName,
					Schema: replySchema(),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	r.logger.Debug().
		Str("model", r.model).
		Int("promptLen", len(prompt)).
		Msg("Requesting reply from OpenAI")

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Reply{}, fmt.Errorf("openai request failed (status %d): %s",
				apiErr.StatusCode, strings.TrimSpace(apiErr.Message))
		}
		return Reply{}, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("openai returned no choices")
	}

	reply, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return Reply{}, err
	}

	r.logger.Info().
		Str("emotion", string(reply.Emotion)).
		Int("textLen", len(reply.Text)).
		Msg("Got reply from OpenAI")
	return reply, nil
}
