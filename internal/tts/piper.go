// Piper neural TTS provider using local ONNX models.
// https://github.com/rhasspy/piper
package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// PiperProvider implements TTS using the local piper binary.
type PiperProvider struct {
	logger     zerolog.Logger
	config     *PiperConfig
	binaryPath string
}

// PiperConfig holds Piper TTS configuration.
type PiperConfig struct {
	Binary   string `json:"binary"`    // path to the piper binary
	Model    string `json:"model"`     // path to a .onnx voice model
	BaseRate int    `json:"base_rate"` // words per minute at length scale 1.0
}

// DefaultPiperConfig returns sensible defaults for Piper TTS.
func DefaultPiperConfig() *PiperConfig {
	homeDir, _ := os.UserHomeDir()
	return &PiperConfig{
		Model:    filepath.Join(homeDir, ".cortexvoice", "piper-voices", "en_US-amy-medium.onnx"),
		BaseRate: 175,
	}
}

// NewPiperProvider creates a Piper provider. With no configured binary it
// checks PATH and the usual install locations.
func NewPiperProvider(logger zerolog.Logger, config *PiperConfig) *PiperProvider {
	if config == nil {
		config = DefaultPiperConfig()
	}
	if config.BaseRate <= 0 {
		config.BaseRate = 175
	}

	binaryPath := config.Binary
	if binaryPath == "" {
		if path, err := exec.LookPath("piper"); err == nil {
			binaryPath = path
		} else {
			homeDir, _ := os.UserHomeDir()
			candidates := []string{
				filepath.Join(homeDir, ".local/bin/piper"),
				"/usr/local/bin/piper",
				"/opt/homebrew/bin/piper",
			}
			for _, candidate := range candidates {
				if _, err := os.Stat(candidate); err == nil {
					binaryPath = candidate
					break
				}
			}
		}
	}

	return &PiperProvider{
		logger:     logger.With().Str("provider", "piper").Logger(),
		config:     config,
		binaryPath: binaryPath,
	}
}

// Name returns the provider identifier.
func (p *PiperProvider) Name() string {
	return "piper"
}

// IsAvailable checks that both the piper binary and the voice model exist.
func (p *PiperProvider) IsAvailable() bool {
	if p.binaryPath == "" {
		return false
	}
	if _, err := os.Stat(p.binaryPath); err != nil {
		return false
	}
	if _, err := os.Stat(p.modelPath(nil)); err != nil {
		return false
	}
	return true
}

// Synthesize renders text to req.OutputPath, passing the text on stdin
// the way piper expects.
func (p *PiperProvider) Synthesize(ctx context.Context, req *Request) error {
	if p.binaryPath == "" {
		return fmt.Errorf("piper: %w", ErrUnavailable)
	}

	modelPath := p.modelPath(req)
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("piper model %s: %w", modelPath, ErrUnavailable)
	}

	args := []string{
		"--model", modelPath,
		"--output_file", req.OutputPath,
	}
	if scale := p.lengthScale(req.Rate); scale != 1.0 {
		args = append(args, "--length_scale", strconv.FormatFloat(scale, 'f', 3, 64))
	}

	p.logger.Debug().
		Str("model", modelPath).
		Int("textLen", len(req.Text)).
		Msg("Synthesizing with piper")

	cmd := exec.CommandContext(ctx, p.binaryPath, args...)
	cmd.Stdin = bytes.NewBufferString(req.Text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Error().
			Err(err).
			Str("stderr", stderr.String()).
			Msg("piper synthesis failed")
		return fmt.Errorf("piper command failed: %w", err)
	}

	p.logger.Info().Str("path", req.OutputPath).Msg("piper synthesis complete")
	return nil
}

// modelPath resolves the voice model: an explicit Voice naming an .onnx
// file wins, else the configured model.
func (p *PiperProvider) modelPath(req *Request) string {
	if req != nil && filepath.Ext(req.Voice) == ".onnx" {
		return req.Voice
	}
	return p.config.Model
}

// lengthScale converts a words-per-minute rate to piper's length_scale,
// which multiplies phoneme durations: faster speech means a scale below 1.
func (p *PiperProvider) lengthScale(rate int) float64 {
	if rate <= 0 || rate == p.config.BaseRate {
		return 1.0
	}
	return float64(p.config.BaseRate) / float64(rate)
}
