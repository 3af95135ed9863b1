// macOS native provider using the 'say' command. Zero-install fallback
// with high-quality system voices, macOS only.
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
)

// SayProvider implements TTS using the macOS 'say' command.
type SayProvider struct {
	logger zerolog.Logger
	config *SayConfig
}

// SayConfig holds macOS say configuration.
type SayConfig struct {
	DefaultVoice string `json:"default_voice"` // Samantha, Daniel, ...
	DefaultRate  int    `json:"default_rate"`  // words per minute
}

// DefaultSayConfig returns sensible defaults for macOS say.
func DefaultSayConfig() *SayConfig {
	return &SayConfig{
		DefaultVoice: "Samantha",
		DefaultRate:  175,
	}
}

// NewSayProvider creates a macOS say provider.
func NewSayProvider(logger zerolog.Logger, config *SayConfig) *SayProvider {
	if config == nil {
		config = DefaultSayConfig()
	}
	return &SayProvider{
		logger: logger.With().Str("provider", "say").Logger(),
		config: config,
	}
}

// Name returns the provider identifier.
func (p *SayProvider) Name() string {
	return "say"
}

// IsAvailable checks that this is macOS and the say command exists.
func (p *SayProvider) IsAvailable() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("say")
	return err == nil
}

// Synthesize renders text to req.OutputPath. The LEI16 data format keeps
// the output close to the 16-bit PCM the alignment step normalizes to.
func (p *SayProvider) Synthesize(ctx context.Context, req *Request) error {
	if !p.IsAvailable() {
		return fmt.Errorf("say: %w", ErrUnavailable)
	}

	args := p.buildArgs(req)

	p.logger.Debug().
		Strs("args", args).
		Int("textLen", len(req.Text)).
		Msg("Synthesizing with say")

	cmd := exec.CommandContext(ctx, "say", append(args, req.Text)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		p.logger.Error().
			Err(err).
			Str("output", string(output)).
			Msg("say synthesis failed")
		return fmt.Errorf("say command failed: %w", err)
	}

	p.logger.Info().Str("path", req.OutputPath).Msg("say synthesis complete")
	return nil
}

// buildArgs assembles the flag list, without the trailing text argument.
// say has no volume flag; volume shaping happens at the engine default.
func (p *SayProvider) buildArgs(req *Request) []string {
	voice := req.Voice
	if voice == "" {
		voice = p.config.DefaultVoice
	}
	rate := req.Rate
	if rate <= 0 {
		rate = p.config.DefaultRate
	}

	return []string{
		"-v", voice,
		"-r", strconv.Itoa(rate),
		"-o", req.OutputPath,
		"--data-format=LEI16@22050",
	}
}
