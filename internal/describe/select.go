package describe

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/photolog/internal/config"
)

// ErrNoProvider is returned when no description backend is configured.
var ErrNoProvider = errors.New("no description provider configured: set OPENAI_TOKEN, GEMINI_API_KEY or OLLAMA_URL")

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// New returns the named provider. An empty name picks the first configured
// backend in the order openai, gemini, ollama.
func New(ctx context.Context, name string, cfg *config.Config) (Provider, error) {
	if name == "" {
		switch {
		case cfg.OpenAI.Token != "":
			name = ProviderOpenAI
		case cfg.Gemini.APIKey != "":
			name = ProviderGemini
		case cfg.Ollama.URL != "":
			name = ProviderOllama
		default:
			return nil, ErrNoProvider
		}
	}

	switch name {
	case ProviderOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return NewOpenAIProvider(cfg.OpenAI.Token, pricing(cfg, chatModel)), nil
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		p, err := NewGeminiProvider(ctx, cfg.Gemini.APIKey, pricing(cfg, geminiModel))
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOllama:
		return NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be openai, gemini or ollama", name)
	}
}

func pricing(cfg *config.Config, model string) RequestPricing {
	p := cfg.GetModelPricing(model).Standard
	return RequestPricing{Input: p.Input, Output: p.Output}
}
