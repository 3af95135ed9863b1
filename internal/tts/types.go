// Package tts provides speech synthesis providers for CortexVoice. Each
// provider renders text to a waveform file on disk; duration is measured
// from the file afterwards, never trusted from the engine.
package tts

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrUnavailable     = errors.New("tts provider unavailable")
	ErrUnknownProvider = errors.New("unknown tts provider")
)

// Request describes one synthesis job. Rate and Volume arrive already
// shaped by the emotion adjustment.
type Request struct {
	Text       string  // what to speak
	OutputPath string  // where the provider writes the waveform
	Voice      string  // provider-specific voice identifier, "" for default
	Rate       int     // words per minute
	Volume     float64 // 0..1
}

// Synthesizer is the capability interface all providers implement.
type Synthesizer interface {
	// Name returns the provider identifier (e.g. "espeak", "piper").
	Name() string

	// IsAvailable reports whether the provider can synthesize on this
	// host right now (binary installed, API key configured, ...).
	IsAvailable() bool

	// Synthesize renders req.Text to req.OutputPath. The pipeline does
	// not retry; a failed call must not leave a usable file behind.
	Synthesize(ctx context.Context, req *Request) error
}

// Config selects and tunes a synthesizer. Field values come from the
// application config; zero values mean provider defaults.
type Config struct {
	Provider     string // espeak, say, piper, openai, or auto
	Voice        string
	EspeakBinary string
	PiperBinary  string
	PiperModel   string
	OpenAIAPIKey string
	OpenAIModel  string
}
