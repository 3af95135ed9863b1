// Package pipeline orchestrates one script-to-speech run: synthesize the
// script to a WAV, derive the mouth-shape timeline, and write the
// alignment record the head viewer plays back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/cortexvoice/internal/align"
	"github.com/normanking/cortexvoice/internal/audio"
	"github.com/normanking/cortexvoice/internal/phoneme"
	"github.com/normanking/cortexvoice/internal/prosody"
	"github.com/normanking/cortexvoice/internal/tts"
	"github.com/normanking/cortexvoice/internal/viseme"
)

// ErrEmptyScript reports a script file with nothing speakable in it.
var ErrEmptyScript = errors.New("script is empty")

// Options names the inputs and outputs of one run.
type Options struct {
	ScriptPath string          // text to speak
	AudioPath  string          // WAV the synthesizer writes
	AlignPath  string          // alignment JSON for the viewer
	Emotion    prosody.Emotion // delivery tone; invalid values become neutral
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Text      string
	Duration  float64 // audio length in seconds
	Phonemes  []string
	Shapes    []viseme.Shape
	Intervals []align.Interval
	Elapsed   time.Duration
}

// RunnerConfig carries the base speech parameters. Emotion shaping is
// applied on top of these per run.
type RunnerConfig struct {
	Voice  string
	Rate   int     // words per minute, default 175
	Volume float64 // 0..1, default 1.0
}

// Runner executes the pipeline with a fixed phonemizer and synthesizer.
type Runner struct {
	logger     zerolog.Logger
	phonemizer *phoneme.Phonemizer
	synth      tts.Synthesizer
	voice      string
	rate       int
	volume     float64
}

// NewRunner creates a pipeline runner.
func NewRunner(logger zerolog.Logger, phonemizer *phoneme.Phonemizer, synth tts.Synthesizer, cfg RunnerConfig) *Runner {
	if cfg.Rate <= 0 {
		cfg.Rate = 175
	}
	if cfg.Volume <= 0 {
		cfg.Volume = 1.0
	}
	return &Runner{
		logger:     logger.With().Str("component", "pipeline").Logger(),
		phonemizer: phonemizer,
		synth:      synth,
		voice:      cfg.Voice,
		rate:       cfg.Rate,
		volume:     cfg.Volume,
	}
}

// Run executes one pass: read script, synthesize, measure, phonemize,
// allocate, write the record. A fatal step leaves no alignment behind;
// the viewer keeps whatever it loaded last.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With().Str("run", runID).Logger()

	raw, err := os.ReadFile(opts.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", opts.ScriptPath, ErrEmptyScript)
	}

	emotion := opts.Emotion
	if !prosody.Valid(emotion) {
		if emotion != "" {
			log.Warn().Str("emotion", string(emotion)).Msg("Unknown emotion, using neutral")
		}
		emotion = prosody.EmotionNeutral
	}

	log.Info().
		Str("script", opts.ScriptPath).
		Str("emotion", string(emotion)).
		Int("textLen", len(text)).
		Msg("Pipeline run started")

	adj := prosody.AdjustmentFor(emotion)
	req := &tts.Request{
		Text:       text,
		OutputPath: opts.AudioPath,
		Voice:      r.voice,
		Rate:       adj.ApplyRate(r.rate),
		Volume:     adj.ApplyVolume(r.volume),
	}

	log.Debug().
		Str("provider", r.synth.Name()).
		Int("rate", req.Rate).
		Float64("volume", req.Volume).
		Msg("Synthesizing speech")
	if err := r.synth.Synthesize(ctx, req); err != nil {
		return nil, fmt.Errorf("synthesizing: %w", err)
	}

	duration, err := audio.Normalize(opts.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("normalizing audio: %w", err)
	}

	phones := r.phonemizer.Phonemize(text)
	shapes := viseme.MapSequence(phones)
	intervals := align.Allocate(shapes, duration)

	rec := align.Build(opts.AudioPath, intervals, emotion)
	if err := align.Write(opts.AlignPath, rec); err != nil {
		return nil, fmt.Errorf("writing alignment: %w", err)
	}

	elapsed := time.Since(start)
	log.Info().
		Float64("audioSec", duration).
		Int("phonemes", len(phones)).
		Int("shapes", len(shapes)).
		Dur("elapsed", elapsed).
		Str("alignment", opts.AlignPath).
		Msg("Pipeline run complete")

	return &Result{
		RunID:     runID,
		Text:      text,
		Duration:  duration,
		Phonemes:  phones,
		Shapes:    shapes,
		Intervals: intervals,
		Elapsed:   elapsed,
	}, nil
}
