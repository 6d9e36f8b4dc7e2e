package provider

import (
	"fmt"
	"strings"
	"time"
)

// SlotConfig describes one configured provider slot (primary or fallback).
type SlotConfig struct {
	// Kind selects the adapter: "openai", "ollama", or "none".
	Kind        string
	APIKey      string
	BaseURL     string
	TextModel   string
	SpeechModel string
	HTTPTimeout time.Duration
}

// New builds the adapters for one provider slot. Kind "none" (or empty)
// yields nil adapters, which callers treat as an unconfigured slot. Ollama
// slots return a nil SpeechSynthesizer.
func New(cfg SlotConfig) (TextGenerator, SpeechSynthesizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "none":
		return nil, nil, nil
	case NameOpenAI:
		p, err := NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			TextModel:   cfg.TextModel,
			SpeechModel: cfg.SpeechModel,
			HTTPTimeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case NameOllama:
		p, err := NewOllama(OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.TextModel,
			HTTPTimeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		return nil, nil, fmt.Errorf("provider: unknown kind %q", cfg.Kind)
	}
}
