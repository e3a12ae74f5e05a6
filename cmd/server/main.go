package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/facturaIA/docqa-service/api"
	"github.com/facturaIA/docqa-service/internal/auth"
	"github.com/facturaIA/docqa-service/internal/config"
	"github.com/facturaIA/docqa-service/internal/storage"
	"github.com/facturaIA/docqa-service/internal/submission"
)

func main() {
	// Credentials may come from a local .env file
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dispatcher, err := submission.NewFromConfig(cfg.AI, "", "")
	if err != nil {
		log.Fatalf("Failed to create AI provider: %v", err)
	}

	// MinIO is an optional document source
	var documents api.DocumentSource
	if cfg.Storage.Enabled() {
		store, err := storage.New(cfg.Storage, cfg.MaxUploadSize)
		if err != nil {
			log.Printf("Warning: MinIO storage not available: %v", err)
			log.Println("Documents can only be uploaded directly")
		} else {
			documents = store
			log.Printf("MinIO storage initialized (bucket %s)", store.Bucket())
		}
	}

	handler := api.NewHandler(cfg, dispatcher, documents, dispatcher.ProviderName())
	var router http.Handler = handler.SetupRoutes()

	// JWT is optional; without a secret /api is open
	if cfg.Auth.Secret != "" {
		ttl, err := time.ParseDuration(cfg.Auth.TokenTTL)
		if err != nil {
			log.Fatalf("Invalid auth.token_ttl %q: %v", cfg.Auth.TokenTTL, err)
		}
		authenticator, err := auth.New(cfg.Auth.Secret, ttl)
		if err != nil {
			log.Fatalf("Failed to initialize auth: %v", err)
		}
		router = authenticator.JWTMiddleware(router)
		log.Println("JWT authentication enabled")
	}

	if cfg.AI.DefaultProvider != "ollama" && !hasAPIKey(cfg.AI.DefaultProvider, cfg.AI.Gemini.APIKey, cfg.AI.OpenAI.APIKey) {
		log.Printf("Warning: no API key for %s; image questions will fail", cfg.AI.DefaultProvider)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("Starting Document QA Service v%s on %s", api.Version, addr)
	log.Printf("AI Provider: %s", dispatcher.ProviderName())
	log.Printf("Storage: %v", documents != nil)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/submit   - PDF extraction or image question", addr)
	log.Printf("  POST http://%s/api/extract  - PDF field extraction", addr)
	log.Printf("  POST http://%s/api/ask      - Image question", addr)
	log.Printf("  GET  http://%s/health       - Health check", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func hasAPIKey(provider, geminiKey, openaiKey string) bool {
	switch provider {
	case "gemini":
		return geminiKey != ""
	case "openai":
		return openaiKey != ""
	}
	return false
}
