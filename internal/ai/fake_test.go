package ai

import (
	"context"

	"github.com/facturaIA/docqa-service/internal/models"
)

type generateCall struct {
	prompt string
	image  *models.Image
}

// fakeProvider returns canned text and records every call
type fakeProvider struct {
	answer string
	err    error
	calls  []generateCall
}

func (f *fakeProvider) Generate(_ context.Context, prompt string, image *models.Image) (string, error) {
	f.calls = append(f.calls, generateCall{prompt: prompt, image: image})
	return f.answer, f.err
}

func (f *fakeProvider) Name() string {
	return "fake"
}
