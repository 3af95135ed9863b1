// Package config provides configuration management for CortexVoice.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Lexicon LexiconConfig `mapstructure:"lexicon"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LLMConfig configures the language-model responder used by `respond`.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"` // openai, ollama
	Model        string        `mapstructure:"model"`
	OpenAIAPIKey string        `mapstructure:"openai_api_key"` // falls back to OPENAI_API_KEY
	OllamaURL    string        `mapstructure:"ollama_url"`
	OllamaModel  string        `mapstructure:"ollama_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// TTSConfig configures speech synthesis.
type TTSConfig struct {
	Provider     string  `mapstructure:"provider"` // auto, espeak, say, piper, openai
	Voice        string  `mapstructure:"voice"`
	Rate         int     `mapstructure:"rate"`   // words per minute before emotion shaping
	Volume       float64 `mapstructure:"volume"` // 0..1 before emotion shaping
	EspeakBinary string  `mapstructure:"espeak_binary"`
	PiperBinary  string  `mapstructure:"piper_binary"`
	PiperModel   string  `mapstructure:"piper_model"` // path to a .onnx voice model
	OpenAIAPIKey string  `mapstructure:"openai_api_key"`
	OpenAIModel  string  `mapstructure:"openai_model"`
}

// LexiconConfig configures the pronunciation dictionary.
type LexiconConfig struct {
	Path        string `mapstructure:"path"`
	DownloadURL string `mapstructure:"download_url"`
	AutoFetch   bool   `mapstructure:"auto_fetch"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// cmudictURL is the upstream pronouncing dictionary fetched on first run
// when no local copy exists.
const cmudictURL = "https://raw.githubusercontent.com/cmusphinx/cmudict/master/cmudict.dict"

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4.1-mini",
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "llama3.2",
			Timeout:     60 * time.Second,
		},
		TTS: TTSConfig{
			Provider:    "auto",
			Voice:       "",
			Rate:        175,
			Volume:      1.0,
			PiperModel:  filepath.Join(home, ".cortexvoice", "piper-voices", "en_US-amy-medium.onnx"),
			OpenAIModel: "tts-1",
		},
		Lexicon: LexiconConfig{
			Path:        filepath.Join(home, ".cortexvoice", "cmudict.dict"),
			DownloadURL: cmudictURL,
			AutoFetch:   true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Dir returns the configuration directory path, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".cortexvoice")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads configuration from file and environment. An empty path reads
// config.yaml from ~/.cortexvoice or the working directory, writing the
// defaults on first run; a non-empty path must name an existing file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return cfg, err
		}
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. CORTEXVOICE_TTS_PROVIDER.
	v.SetEnvPrefix("CORTEXVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		// First run: persist the defaults so users have a file to edit,
		// then read it back so env overrides see every key.
		if saveErr := Save(cfg, ""); saveErr != nil {
			return cfg, saveErr
		}
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, or to ~/.cortexvoice/config.yaml
// when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.openai_api_key", cfg.LLM.OpenAIAPIKey)
	v.Set("llm.ollama_url", cfg.LLM.OllamaURL)
	v.Set("llm.ollama_model", cfg.LLM.OllamaModel)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())

	v.Set("tts.provider", cfg.TTS.Provider)
	v.Set("tts.voice", cfg.TTS.Voice)
	v.Set("tts.rate", cfg.TTS.Rate)
	v.Set("tts.volume", cfg.TTS.Volume)
	v.Set("tts.espeak_binary", cfg.TTS.EspeakBinary)
	v.Set("tts.piper_binary", cfg.TTS.PiperBinary)
	v.Set("tts.piper_model", cfg.TTS.PiperModel)
	v.Set("tts.openai_api_key", cfg.TTS.OpenAIAPIKey)
	v.Set("tts.openai_model", cfg.TTS.OpenAIModel)

	v.Set("lexicon.path", cfg.Lexicon.Path)
	v.Set("lexicon.download_url", cfg.Lexicon.DownloadURL)
	v.Set("lexicon.auto_fetch", cfg.Lexicon.AutoFetch)

	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.console", cfg.Logging.Console)

	return v.WriteConfigAs(path)
}
