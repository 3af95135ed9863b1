package tts

import (
	"fmt"

	"github.com/rs/zerolog"
)

// autoOrder lists the providers eligible for automatic selection. The
// OpenAI provider is excluded so "auto" never silently incurs API usage.
var autoOrder = []string{"espeak", "say", "piper"}

// Providers builds every known synthesizer from the given configuration.
func Providers(cfg *Config, logger zerolog.Logger) []Synthesizer {
	if cfg == nil {
		cfg = &Config{}
	}

	espeakCfg := DefaultEspeakConfig()
	espeakCfg.Binary = cfg.EspeakBinary

	sayCfg := DefaultSayConfig()
	if cfg.Voice != "" {
		sayCfg.DefaultVoice = cfg.Voice
	}

	piperCfg := DefaultPiperConfig()
	piperCfg.Binary = cfg.PiperBinary
	if cfg.PiperModel != "" {
		piperCfg.Model = cfg.PiperModel
	}

	openaiCfg := DefaultOpenAIConfig()
	if cfg.OpenAIAPIKey != "" {
		openaiCfg.APIKey = cfg.OpenAIAPIKey
	}
	if cfg.OpenAIModel != "" {
		openaiCfg.Model = cfg.OpenAIModel
	}

	return []Synthesizer{
		NewEspeakProvider(logger, espeakCfg),
		NewSayProvider(logger, sayCfg),
		NewPiperProvider(logger, piperCfg),
		NewOpenAIProvider(logger, openaiCfg),
	}
}

// Resolve selects the synthesizer named by cfg.Provider, or the first
// available local engine when the provider is empty or "auto".
func Resolve(cfg *Config, logger zerolog.Logger) (Synthesizer, error) {
	name := ""
	if cfg != nil {
		name = cfg.Provider
	}
	return pick(name, Providers(cfg, logger))
}

func pick(name string, providers []Synthesizer) (Synthesizer, error) {
	if name == "" || name == "auto" {
		for _, want := range autoOrder {
			for _, p := range providers {
				if p.Name() == want && p.IsAvailable() {
					return p, nil
				}
			}
		}
		return nil, fmt.Errorf("no local speech synthesizer found: %w", ErrUnavailable)
	}

	for _, p := range providers {
		if p.Name() != name {
			continue
		}
		if !p.IsAvailable() {
			return nil, fmt.Errorf("provider %s: %w", name, ErrUnavailable)
		}
		return p, nil
	}
	return nil, fmt.Errorf("provider %s: %w", name, ErrUnknownProvider)
}
