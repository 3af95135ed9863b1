// Package main is the entry point for the CortexVoice CLI.
// CortexVoice turns a text script into synthesized speech plus a JSON
// alignment record mapping mouth shapes to time intervals, ready for a
// 3D head viewer to play back.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/normanking/cortexvoice/internal/config"
	"github.com/normanking/cortexvoice/internal/lexicon"
	"github.com/normanking/cortexvoice/internal/llm"
	"github.com/normanking/cortexvoice/internal/logging"
	"github.com/normanking/cortexvoice/internal/phoneme"
	"github.com/normanking/cortexvoice/internal/pipeline"
	"github.com/normanking/cortexvoice/internal/prosody"
	"github.com/normanking/cortexvoice/internal/tts"
)

var (
	version      = "0.1.0"
	cfgPath      string
	providerName string
	voiceName    string
	verbose      bool
	watchMode    bool
	log          *logging.Logger
)

func main() {
	loadEnvFiles()

	rootCmd := &cobra.Command{
		Use:   "cortexvoice <script.txt> <out.wav> <out.json> <emotion>",
		Short: "CortexVoice - Speech synthesis with lip-sync alignment",
		Long: `CortexVoice speaks a text script and writes an alignment record a
3D head viewer can play back: the script is phonemized against the CMU
pronouncing dictionary, phonemes collapse to a small mouth-shape
alphabet, and the shapes are spread across the audio's duration.

Speak a script:          cortexvoice script.txt out.wav out.json happy
Re-speak on every edit:  cortexvoice script.txt out.wav out.json happy --watch
Ask the LLM for a reply: cortexvoice respond script.txt out.wav out.json
List speech providers:   cortexvoice providers`,
		Args:              cobra.ExactArgs(4),
		PersistentPreRunE: initLogging,
		RunE:              runSpeak,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.cortexvoice/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "speech provider (auto, espeak, say, piper, openai)")
	rootCmd.PersistentFlags().StringVar(&voiceName, "voice", "", "voice name or model for the speech provider")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Watch applies to the root speak command only.
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "re-run the pipeline whenever the script file changes")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CortexVoice v%s\n", version)
		},
	})

	// Respond command (LLM reply, then speak it)
	rootCmd.AddCommand(respondCmd())

	// Providers command
	rootCmd.AddCommand(providersCmd())

	// Config command group
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGING INITIALIZATION
// ═══════════════════════════════════════════════════════════════════════════════

func initLogging(cmd *cobra.Command, args []string) error {
	logCfg := logging.DefaultConfig()
	// Best effort: commands re-load the config themselves and surface
	// errors there, so a broken file only costs us the custom log level.
	if cfg, err := config.Load(cfgPath); err == nil {
		logCfg.Level = cfg.Logging.Level
		logCfg.Console = cfg.Logging.Console
	}
	if verbose {
		logCfg.Level = "debug"
	}

	var err error
	log, err = logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	if verbose {
		zlog := log.Zerolog()
		zlog.Debug().
			Str("config", configPath()).
			Str("log_file", log.LogPath()).
			Msg("Verbose logging enabled")
	}
	return nil
}

// loadEnvFiles loads API keys from ./.env and ~/.cortexvoice/.env into the
// process environment. Variables already set in the environment win, and
// missing files are fine.
func loadEnvFiles() {
	_ = godotenv.Load()
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(home, ".cortexvoice", ".env"))
}

// ═══════════════════════════════════════════════════════════════════════════════
// SPEAK COMMAND (ROOT)
// ═══════════════════════════════════════════════════════════════════════════════

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	runner, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		ScriptPath: args[0],
		AudioPath:  args[1],
		AlignPath:  args[2],
		Emotion:    parseEmotion(args[3]),
	}

	if watchMode {
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", opts.ScriptPath)
		return runner.Watch(ctx, opts)
	}

	res, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Spoke %q\n", res.Text)
	fmt.Printf("Wrote %s and %s (%.2fs audio, %d shapes)\n", opts.AudioPath, opts.AlignPath, res.Duration, len(res.Shapes))
	return nil
}

// parseEmotion maps the CLI emotion argument to a known emotion,
// falling back to neutral so the alignment record stays valid.
func parseEmotion(raw string) prosody.Emotion {
	emotion, ok := prosody.Parse(raw)
	if !ok {
		zlog := log.Zerolog()
		zlog.Warn().Str("emotion", raw).Msg("Unknown emotion, using neutral")
	}
	return emotion
}

// ═══════════════════════════════════════════════════════════════════════════════
// RESPOND COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func respondCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "respond <script.txt> <out.wav> <out.json>",
		Short: "Ask the assistant for a reply, then speak it",
		Long: `Reads the script file as a user prompt, asks the configured language
model for a short reply plus an emotion, overwrites the script file with
the reply text, then runs the speech pipeline on the reply.

Example:
  echo "tell me a joke" > script.txt
  cortexvoice respond script.txt out.wav out.json`,
		Args: cobra.ExactArgs(3),
		RunE: runRespond,
	}
}

func runRespond(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scriptPath := args[0]
	raw, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("reading prompt script: %w", err)
	}
	prompt := strings.TrimSpace(string(raw))
	if prompt == "" {
		return fmt.Errorf("prompt script %s is empty", scriptPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	responder, err := llm.New(llmConfig(cfg), log.Component("llm"))
	if err != nil {
		return err
	}
	if probe, ok := responder.(interface{ Available(context.Context) bool }); ok && !probe.Available(ctx) {
		zlog := log.Zerolog()
		zlog.Warn().Str("provider", cfg.LLM.Provider).Msg("LLM provider not reachable, trying anyway")
	}

	reply, err := responder.Respond(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generating reply: %w", err)
	}
	zlog := log.Zerolog()
	zlog.Info().
		Str("emotion", string(reply.Emotion)).
		Int("chars", len(reply.Text)).
		Msg("Reply generated")

	// The reply becomes the new script so the audio and the alignment
	// record describe the same words.
	if err := os.WriteFile(scriptPath, []byte(reply.Text), 0644); err != nil {
		return fmt.Errorf("writing reply to script: %w", err)
	}

	runner, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	res, err := runner.Run(ctx, pipeline.Options{
		ScriptPath: scriptPath,
		AudioPath:  args[1],
		AlignPath:  args[2],
		Emotion:    reply.Emotion,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Assistant (%s): %s\n", reply.Emotion, reply.Text)
	fmt.Printf("Wrote %s and %s (%.2fs audio, %d shapes)\n", args[1], args[2], res.Duration, len(res.Shapes))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// PROVIDERS COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List speech providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			selected := cfg.TTS.Provider
			if providerName != "" {
				selected = providerName
			}

			fmt.Println("Speech Providers:")
			fmt.Println("─────────────────")
			for _, p := range tts.Providers(ttsConfig(cfg), log.Component("tts")) {
				status := "unavailable"
				if p.IsAvailable() {
					status = "available"
				}
				marker := " "
				if p.Name() == selected {
					marker = "*"
				}
				fmt.Printf("%s %-8s %s\n", marker, p.Name(), status)
			}
			if selected == "" || selected == "auto" {
				fmt.Println("\nProvider is \"auto\": the first available local provider is used.")
			}
			return nil
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONFIG COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	// Show command
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			fmt.Println("CortexVoice Configuration:")
			fmt.Println("──────────────────────────")
			fmt.Printf("Speech Provider: %s\n", cfg.TTS.Provider)
			fmt.Printf("Voice:           %s\n", orDefault(cfg.TTS.Voice, "(provider default)"))
			fmt.Printf("Rate:            %d wpm\n", cfg.TTS.Rate)
			fmt.Printf("Volume:          %.2f\n", cfg.TTS.Volume)
			fmt.Printf("Lexicon Path:    %s\n", cfg.Lexicon.Path)
			fmt.Printf("Lexicon Fetch:   %t\n", cfg.Lexicon.AutoFetch)
			fmt.Printf("LLM Provider:    %s\n", cfg.LLM.Provider)
			fmt.Printf("LLM Model:       %s\n", cfg.LLM.Model)
			fmt.Printf("Log Level:       %s\n", cfg.Logging.Level)
			return nil
		},
	})

	// Path command
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configPath())
		},
	})

	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// buildRunner assembles the pipeline: lexicon, phonemizer, and a resolved
// speech provider, with CLI flags taking precedence over the config file.
func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	lex, err := loadLexicon(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}
	zlog := log.Zerolog()
	zlog.Info().Int("entries", lex.Size()).Msg("Lexicon ready")

	ttsCfg := ttsConfig(cfg)
	if providerName != "" {
		ttsCfg.Provider = providerName
	}
	if voiceName != "" {
		ttsCfg.Voice = voiceName
	}

	synth, err := tts.Resolve(ttsCfg, log.Component("tts"))
	if err != nil {
		return nil, err
	}
	zlog.Info().Str("provider", synth.Name()).Msg("Speech provider selected")

	return pipeline.NewRunner(log.Zerolog(), phoneme.NewPhonemizer(lex), synth, pipeline.RunnerConfig{
		Voice:  ttsCfg.Voice,
		Rate:   cfg.TTS.Rate,
		Volume: cfg.TTS.Volume,
	}), nil
}

// loadLexicon loads the pronouncing dictionary, downloading it first when
// auto-fetch is enabled and no local copy exists.
func loadLexicon(ctx context.Context, cfg *config.Config) (*lexicon.Lexicon, error) {
	if cfg.Lexicon.AutoFetch {
		fetcher := lexicon.NewFetcher(log.Component("lexicon"), nil)
		return fetcher.Ensure(ctx, cfg.Lexicon.Path, cfg.Lexicon.DownloadURL)
	}
	return lexicon.Load(cfg.Lexicon.Path)
}

func ttsConfig(cfg *config.Config) *tts.Config {
	return &tts.Config{
		Provider:     cfg.TTS.Provider,
		Voice:        cfg.TTS.Voice,
		EspeakBinary: cfg.TTS.EspeakBinary,
		PiperBinary:  cfg.TTS.PiperBinary,
		PiperModel:   cfg.TTS.PiperModel,
		OpenAIAPIKey: cfg.TTS.OpenAIAPIKey,
		OpenAIModel:  cfg.TTS.OpenAIModel,
	}
}

func llmConfig(cfg *config.Config) *llm.Config {
	return &llm.Config{
		Provider:     cfg.LLM.Provider,
		Model:        cfg.LLM.Model,
		OpenAIAPIKey: cfg.LLM.OpenAIAPIKey,
		OllamaURL:    cfg.LLM.OllamaURL,
		OllamaModel:  cfg.LLM.OllamaModel,
		Timeout:      cfg.LLM.Timeout,
	}
}

func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	dir, err := config.Dir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
