// eSpeak NG provider: formant synthesis through the espeak-ng command.
// Robotic but dependency-light, present on most Linux systems, and the
// only provider that needs no model files or API keys.
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"
)

// EspeakProvider implements TTS using the espeak-ng CLI.
type EspeakProvider struct {
	logger     zerolog.Logger
	config     *EspeakConfig
	binaryPath string
}

// EspeakConfig holds eSpeak NG configuration.
type EspeakConfig struct {
	Binary       string `json:"binary"`        // path or name of the espeak binary
	DefaultVoice string `json:"default_voice"` // e.g. en-us, en-gb
	DefaultRate  int    `json:"default_rate"`  // words per minute
}

// DefaultEspeakConfig returns sensible defaults for eSpeak NG.
func DefaultEspeakConfig() *EspeakConfig {
	return &EspeakConfig{
		DefaultVoice: "en-us",
		DefaultRate:  175,
	}
}

// NewEspeakProvider creates an eSpeak NG provider. With no configured
// binary it looks for espeak-ng, then the legacy espeak name.
func NewEspeakProvider(logger zerolog.Logger, config *EspeakConfig) *EspeakProvider {
	if config == nil {
		config = DefaultEspeakConfig()
	}

	binaryPath := config.Binary
	if binaryPath == "" {
		for _, name := range []string{"espeak-ng", "espeak"} {
			if path, err := exec.LookPath(name); err == nil {
				binaryPath = path
				break
			}
		}
	}

	return &EspeakProvider{
		logger:     logger.With().Str("provider", "espeak").Logger(),
		config:     config,
		binaryPath: binaryPath,
	}
}

// Name returns the provider identifier.
func (p *EspeakProvider) Name() string {
	return "espeak"
}

// IsAvailable checks that the espeak binary can be executed.
func (p *EspeakProvider) IsAvailable() bool {
	if p.binaryPath == "" {
		return false
	}
	_, err := exec.LookPath(p.binaryPath)
	return err == nil
}

// Synthesize renders text to a WAV file with espeak-ng -w.
func (p *EspeakProvider) Synthesize(ctx context.Context, req *Request) error {
	if !p.IsAvailable() {
		return fmt.Errorf("espeak: %w", ErrUnavailable)
	}

	args := p.buildArgs(req)

	p.logger.Debug().
		Strs("args", args).
		Int("textLen", len(req.Text)).
		Msg("Synthesizing with espeak")

	cmd := exec.CommandContext(ctx, p.binaryPath, append(args, req.Text)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		p.logger.Error().
			Err(err).
			Str("output", string(output)).
			Msg("espeak synthesis failed")
		return fmt.Errorf("espeak command failed: %w", err)
	}

	p.logger.Info().Str("path", req.OutputPath).Msg("espeak synthesis complete")
	return nil
}

// buildArgs assembles the flag list, without the trailing text argument.
// espeak amplitude runs 0..200 with 100 as the natural default, so a 0..1
// volume maps onto the lower half of the scale.
func (p *EspeakProvider) buildArgs(req *Request) []string {
	rate := req.Rate
	if rate <= 0 {
		rate = p.config.DefaultRate
	}
	voice := req.Voice
	if voice == "" {
		voice = p.config.DefaultVoice
	}
	amplitude := int(req.Volume * 100)
	if req.Volume <= 0 {
		amplitude = 100
	}

	args := []string{
		"-w", req.OutputPath,
		"-s", strconv.Itoa(rate),
		"-a", strconv.Itoa(amplitude),
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return args
}
