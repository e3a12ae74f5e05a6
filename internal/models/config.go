package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Upload limit in bytes (default 10MB)
	MaxUploadSize int64 `yaml:"max_upload_size"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// Remote document source (optional)
	Storage StorageConfig `yaml:"storage"`

	// Bearer token auth (optional)
	Auth AuthConfig `yaml:"auth"`
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "gemini", "openai", "ollama"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OpenAIConfig for OpenAI or compatible endpoints
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"` // Default: "gpt-4o-mini"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`    // e.g. "llava"
}

// StorageConfig points at a MinIO/S3 bucket documents can be read from
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether a document source is configured
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// AuthConfig enables JWT validation on /api routes when Secret is set
type AuthConfig struct {
	Secret   string `yaml:"jwt_secret"`
	TokenTTL string `yaml:"token_ttl"` // Go duration, default "24h"
}
