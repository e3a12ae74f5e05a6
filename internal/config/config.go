package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/facturaIA/docqa-service/internal/models"
)

const (
	DefaultPort          = 8080
	DefaultHost          = "0.0.0.0"
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB
	DefaultProvider      = "gemini"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOllamaModel   = "llava"
)

// LoadDotEnv loads KEY=value pairs from the given .env files into the
// process environment. Variables that are already set win, and missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the YAML config at path, applies defaults and environment
// overrides. A missing file is not an error; defaults and env are used.
func Load(path string) (*models.Config, error) {
	var config models.Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(&config, os.LookupEnv)
	applyDefaults(&config)
	return &config, nil
}

// applyEnv overrides config values with environment variables if present
func applyEnv(config *models.Config, lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if port := get("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if host := get("HOST"); host != "" {
		config.Host = host
	}
	if provider := get("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}

	// GOOGLE_API_KEY is the historic name; GEMINI_API_KEY wins when both are set
	if apiKey := get("GOOGLE_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if apiKey := get("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if model := get("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if apiKey := get("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if baseURL := get("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := get("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if baseURL := get("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}
	if model := get("OLLAMA_MODEL"); model != "" {
		config.AI.Ollama.Model = model
	}

	if endpoint := get("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if accessKey := get("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := get("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if bucket := get("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if useSSL := get("MINIO_USE_SSL"); useSSL != "" {
		config.Storage.UseSSL = useSSL == "true"
	}

	if secret := get("JWT_SECRET"); secret != "" {
		config.Auth.Secret = secret
	}
}

func applyDefaults(config *models.Config) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	if config.AI.DefaultProvider == "" {
		config.AI.DefaultProvider = DefaultProvider
	}
	if config.AI.Gemini.Model == "" {
		config.AI.Gemini.Model = DefaultGeminiModel
	}
	if config.AI.OpenAI.Model == "" {
		config.AI.OpenAI.Model = DefaultOpenAIModel
	}
	if config.AI.Ollama.BaseURL == "" {
		config.AI.Ollama.BaseURL = DefaultOllamaURL
	}
	if config.AI.Ollama.Model == "" {
		config.AI.Ollama.Model = DefaultOllamaModel
	}
	if config.Auth.TokenTTL == "" {
		config.Auth.TokenTTL = "24h"
	}
}
