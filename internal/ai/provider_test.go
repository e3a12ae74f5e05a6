package ai

import (
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaIA/docqa-service/internal/models"
)

func testAIConfig() models.AIConfig {
	return models.AIConfig{
		DefaultProvider: "gemini",
		Gemini:          models.GeminiConfig{APIKey: "g", Model: "gemini-1.5-flash"},
		OpenAI:          models.OpenAIConfig{APIKey: "o", Model: "gpt-4o-mini"},
		Ollama:          models.OllamaConfig{BaseURL: "http://localhost:11434/", Model: "llava"},
	}
}

func TestNewProvider(t *testing.T) {
	cfg := testAIConfig()

	p, err := NewProvider(cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-1.5-flash", p.Name())

	p, err = NewProvider(cfg, "openai", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o", p.Name())

	p, err = NewProvider(cfg, "ollama", "")
	require.NoError(t, err)
	assert.Equal(t, "ollama/llava", p.Name())
	assert.Equal(t, "http://localhost:11434/v1", p.(*OpenAIProvider).baseURL)

	_, err = NewProvider(cfg, "claude", "")
	assert.Error(t, err)
}

func TestGeminiParts(t *testing.T) {
	parts := geminiParts("describe", testImage)
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("describe"), parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: testImage.Data}, parts[1])

	parts = geminiParts("", testImage)
	require.Len(t, parts, 1)
	assert.IsType(t, genai.Blob{}, parts[0])
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("The total "), genai.Text("is 45.00")}},
		}},
	}
	text, err := geminiText(resp)
	require.NoError(t, err)
	assert.Equal(t, "The total is 45.00", text)

	_, err = geminiText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = geminiText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChatMessage(t *testing.T) {
	msg := chatMessage("just text", nil)
	assert.Equal(t, "just text", msg.Content)
	assert.Empty(t, msg.MultiContent)

	msg = chatMessage("what is this?", testImage)
	assert.Empty(t, msg.Content)
	require.Len(t, msg.MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, msg.MultiContent[0].Type)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, msg.MultiContent[1].Type)
	assert.True(t, strings.HasPrefix(msg.MultiContent[1].ImageURL.URL, "data:image/png;base64,"))

	msg = chatMessage("", testImage)
	require.Len(t, msg.MultiContent, 1)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, msg.MultiContent[0].Type)
}
