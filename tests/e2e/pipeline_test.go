package e2e

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/cortexvoice/internal/align"
	"github.com/normanking/cortexvoice/internal/llm"
	"github.com/normanking/cortexvoice/internal/phoneme"
	"github.com/normanking/cortexvoice/internal/pipeline"
	"github.com/normanking/cortexvoice/internal/prosody"
	"github.com/normanking/cortexvoice/internal/viseme"
	"github.com/normanking/cortexvoice/tests/testutil"
)

// TestSpeechPipelineE2E drives the complete cycle:
// script file → phonemes → mouth shapes → audio + alignment record.
func TestSpeechPipelineE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	synth := &testutil.StubSynthesizer{Seconds: 1.0}
	runner := pipeline.NewRunner(logger, phoneme.NewPhonemizer(testutil.FixedLexicon()), synth, pipeline.RunnerConfig{})

	t.Run("FullSpeechCycle", func(t *testing.T) {
		dir := t.TempDir()
		scriptPath := testutil.WriteScript(t, dir, "Hello world")
		audioPath := filepath.Join(dir, "out.wav")
		alignPath := filepath.Join(dir, "out.json")

		startTime := time.Now()

		// Step 1: Run the pipeline
		t.Log("Step 1: Running the script through the pipeline...")
		runStart := time.Now()
		res, err := runner.Run(context.Background(), pipeline.Options{
			ScriptPath: scriptPath,
			AudioPath:  audioPath,
			AlignPath:  alignPath,
			Emotion:    prosody.EmotionHappy,
		})
		runLatency := time.Since(runStart)

		require.NoError(t, err)
		require.NotNil(t, res)
		t.Logf("✓ Pipeline completed in %v", runLatency)
		t.Logf("  Spoke %q as %d phonemes, %d shapes", res.Text, len(res.Phonemes), len(res.Shapes))

		// Step 2: Verify the synthesized audio and emotion shaping
		t.Log("Step 2: Verifying synthesized audio...")
		require.FileExists(t, audioPath)
		assert.InDelta(t, 1.0, res.Duration, 0.01)

		req := synth.LastRequest()
		assert.Equal(t, "Hello world", req.Text)
		assert.Equal(t, 201, req.Rate, "happy should speed up the default 175 wpm")
		assert.Equal(t, 1.0, req.Volume, "volume stays clamped at 1.0")
		t.Logf("✓ Audio present (%.2fs at %d wpm)", res.Duration, req.Rate)

		// Step 3: Verify the alignment record the viewer loads
		t.Log("Step 3: Verifying alignment record...")
		rec, err := align.Read(alignPath)
		require.NoError(t, err)
		require.NoError(t, align.Validate(rec))
		assert.Equal(t, prosody.EmotionHappy, rec.Emotion)

		wantShapes := []viseme.Shape{viseme.ShapeAA, viseme.ShapeOH, viseme.ShapeRR, viseme.ShapeDD}
		require.Len(t, rec.Phonemes, len(wantShapes))
		for i, iv := range rec.Phonemes {
			assert.Equal(t, wantShapes[i], iv.Shape)
		}
		assert.Equal(t, 0.0, rec.Phonemes[0].Start)
		assert.InDelta(t, res.Duration, rec.Phonemes[len(rec.Phonemes)-1].End, 1e-9)
		t.Logf("✓ Alignment record valid (%d intervals over %.2fs)", len(rec.Phonemes), rec.Duration())

		totalLatency := time.Since(startTime)

		t.Log("\n=== E2E Pipeline Summary ===")
		t.Logf("Pipeline Latency: %v", runLatency)
		t.Logf("Total Latency:    %v", totalLatency)
		t.Log("============================")

		assert.Less(t, totalLatency.Seconds(), 5.0, "Stubbed pipeline should complete in <5s")
	})

	// The respond flow: prompt → LLM reply with emotion → reply becomes
	// the script → same pipeline.
	t.Run("RespondFlow", func(t *testing.T) {
		server := testutil.MockOllamaServer(t, "Good morning world", "excited")
		defer server.Close()

		responder := llm.NewOllamaResponder(logger, &llm.Config{OllamaURL: server.URL})
		ctx := context.Background()
		require.True(t, responder.Available(ctx), "mock server should look available")

		t.Log("Step 1: Generating a reply...")
		llmStart := time.Now()
		reply, err := responder.Respond(ctx, "say something nice")
		llmLatency := time.Since(llmStart)

		require.NoError(t, err)
		assert.Equal(t, "Good morning world", reply.Text)
		assert.Equal(t, prosody.EmotionExcited, reply.Emotion)
		t.Logf("✓ LLM replied in %v: %q (%s)", llmLatency, reply.Text, reply.Emotion)

		t.Log("Step 2: Speaking the reply...")
		dir := t.TempDir()
		scriptPath := testutil.WriteScript(t, dir, "say something nice")
		require.NoError(t, os.WriteFile(scriptPath, []byte(reply.Text), 0644))

		audioPath := filepath.Join(dir, "reply.wav")
		alignPath := filepath.Join(dir, "reply.json")
		res, err := runner.Run(ctx, pipeline.Options{
			ScriptPath: scriptPath,
			AudioPath:  audioPath,
			AlignPath:  alignPath,
			Emotion:    reply.Emotion,
		})
		require.NoError(t, err)
		assert.Equal(t, "Good morning world", res.Text)

		req := synth.LastRequest()
		assert.Equal(t, 218, req.Rate, "excited speeds up 175 wpm to 218")

		rec, err := align.Read(alignPath)
		require.NoError(t, err)
		require.NoError(t, align.Validate(rec))
		assert.Equal(t, prosody.EmotionExcited, rec.Emotion)
		assert.NotEmpty(t, rec.Phonemes)
		t.Logf("✓ Reply spoken (%d intervals, emotion %s)", len(rec.Phonemes), rec.Emotion)
	})

	t.Run("ErrorScenarios", func(t *testing.T) {
		ctx := context.Background()

		t.Run("EmptyScript", func(t *testing.T) {
			dir := t.TempDir()
			scriptPath := testutil.WriteScript(t, dir, "   \n")
			_, err := runner.Run(ctx, pipeline.Options{
				ScriptPath: scriptPath,
				AudioPath:  filepath.Join(dir, "out.wav"),
				AlignPath:  filepath.Join(dir, "out.json"),
				Emotion:    prosody.EmotionNeutral,
			})
			assert.ErrorIs(t, err, pipeline.ErrEmptyScript)
			assert.NoFileExists(t, filepath.Join(dir, "out.json"))
		})

		t.Run("MissingScript", func(t *testing.T) {
			dir := t.TempDir()
			_, err := runner.Run(ctx, pipeline.Options{
				ScriptPath: filepath.Join(dir, "absent.txt"),
				AudioPath:  filepath.Join(dir, "out.wav"),
				AlignPath:  filepath.Join(dir, "out.json"),
				Emotion:    prosody.EmotionNeutral,
			})
			assert.Error(t, err)
		})

		t.Run("SynthesisFailure", func(t *testing.T) {
			failing := &testutil.StubSynthesizer{Err: errors.New("engine crashed")}
			failRunner := pipeline.NewRunner(logger, phoneme.NewPhonemizer(testutil.FixedLexicon()), failing, pipeline.RunnerConfig{})

			dir := t.TempDir()
			scriptPath := testutil.WriteScript(t, dir, "Hello world")
			alignPath := filepath.Join(dir, "out.json")
			_, err := failRunner.Run(ctx, pipeline.Options{
				ScriptPath: scriptPath,
				AudioPath:  filepath.Join(dir, "out.wav"),
				AlignPath:  alignPath,
				Emotion:    prosody.EmotionNeutral,
			})
			require.Error(t, err)
			assert.NoFileExists(t, alignPath, "no alignment record after a failed run")
		})

		t.Run("UnknownWordFallsBackToLetters", func(t *testing.T) {
			dir := t.TempDir()
			scriptPath := testutil.WriteScript(t, dir, "Zzyzx")
			alignPath := filepath.Join(dir, "out.json")
			res, err := runner.Run(ctx, pipeline.Options{
				ScriptPath: scriptPath,
				AudioPath:  filepath.Join(dir, "out.wav"),
				AlignPath:  alignPath,
				Emotion:    prosody.EmotionNeutral,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"Z", "Z", "Y", "Z", "X"}, res.Phonemes)

			rec, err := align.Read(alignPath)
			require.NoError(t, err)
			require.NoError(t, align.Validate(rec))
			assert.Len(t, rec.Phonemes, 3, "Y and X carry no mouth shape")
		})
	})
}

// TestWatchModeE2E edits the script while watch mode is running and
// expects a fresh alignment record for each save.
func TestWatchModeE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	synth := &testutil.StubSynthesizer{Seconds: 1.0}
	runner := pipeline.NewRunner(logger, phoneme.NewPhonemizer(testutil.FixedLexicon()), synth, pipeline.RunnerConfig{})

	dir := t.TempDir()
	scriptPath := testutil.WriteScript(t, dir, "Hello world")
	alignPath := filepath.Join(dir, "out.json")
	opts := pipeline.Options{
		ScriptPath: scriptPath,
		AudioPath:  filepath.Join(dir, "out.wav"),
		AlignPath:  alignPath,
		Emotion:    prosody.EmotionNeutral,
	}

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- runner.Watch(ctx, opts)
	}()

	// Initial pass runs as soon as the watcher starts.
	require.Eventually(t, func() bool { return synth.Calls() >= 1 }, 5*time.Second, 20*time.Millisecond)
	t.Logf("✓ Initial run complete (%d synth calls)", synth.Calls())

	// Saving the script triggers a re-run.
	require.NoError(t, os.WriteFile(scriptPath, []byte("Good morning"), 0644))
	require.Eventually(t, func() bool { return synth.Calls() >= 2 }, 5*time.Second, 20*time.Millisecond)
	t.Logf("✓ Re-ran after edit (%d synth calls)", synth.Calls())

	cancel()
	select {
	case err := <-watchDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	rec, err := align.Read(alignPath)
	require.NoError(t, err)
	require.NoError(t, align.Validate(rec))
	assert.Equal(t, "Good morning", synth.LastRequest().Text)
}