package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/facturaIA/docqa-service/internal/models"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	name    string
}

// NewOpenAIProvider creates an OpenAI provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		name:    "openai",
	}
}

// NewOllamaProvider uses Ollama's OpenAI-compatible /v1 endpoint
func NewOllamaProvider(baseURL, model string) *OpenAIProvider {
	return &OpenAIProvider{
		// Ollama ignores the key but the client requires one
		apiKey:  "ollama",
		baseURL: strings.TrimRight(baseURL, "/") + "/v1",
		model:   model,
		name:    "ollama",
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name + "/" + p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, image *models.Image) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	config := openai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: []openai.ChatCompletionMessage{chatMessage(prompt, image)},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// chatMessage builds a single user message. Text-only prompts use plain
// content; anything with an image uses multi-part content.
func chatMessage(prompt string, image *models.Image) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if image == nil || len(image.Data) == 0 {
		msg.Content = prompt
		return msg
	}

	if prompt != "" {
		msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		})
	}
	msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: dataURL(image),
		},
	})
	return msg
}

func dataURL(image *models.Image) string {
	mime := image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
