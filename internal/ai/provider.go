package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/facturaIA/docqa-service/internal/models"
)

var (
	// ErrMissingAPIKey is returned by every call of a provider built without a key
	ErrMissingAPIKey = errors.New("AI provider API key not configured")
	// ErrEmptyResponse is returned when the model answers with no text candidate
	ErrEmptyResponse = errors.New("AI provider returned no content")
)

// Provider is a generative model that accepts text and/or one image
type Provider interface {
	// Generate sends prompt (may be empty) and image (may be nil) in that
	// order and returns the model's text output.
	Generate(ctx context.Context, prompt string, image *models.Image) (string, error)
	Name() string
}

// NewProvider creates the provider named by providerName. An empty name
// selects cfg.DefaultProvider; an empty modelName selects the configured model.
func NewProvider(cfg models.AIConfig, providerName, modelName string) (Provider, error) {
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}

	switch providerName {
	case "gemini":
		model := modelName
		if model == "" {
			model = cfg.Gemini.Model
		}
		return NewGeminiProvider(cfg.Gemini.APIKey, model), nil

	case "openai":
		model := modelName
		if model == "" {
			model = cfg.OpenAI.Model
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model), nil

	case "ollama":
		model := modelName
		if model == "" {
			model = cfg.Ollama.Model
		}
		return NewOllamaProvider(cfg.Ollama.BaseURL, model), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}
