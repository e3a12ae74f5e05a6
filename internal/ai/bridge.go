package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/facturaIA/docqa-service/internal/models"
)

// ErrMissingInput is returned when a query has neither prompt nor image
var ErrMissingInput = errors.New("prompt or image required")

// ModelError wraps any failure of the external model call
type ModelError struct {
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("AI provider %s failed: %v", e.Provider, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Bridge forwards a question about an image to a Provider and hands the
// answer back untouched. It does not cache, retry or time out.
type Bridge struct {
	provider Provider
}

// NewBridge creates a bridge over provider
func NewBridge(provider Provider) *Bridge {
	return &Bridge{provider: provider}
}

// Provider returns the underlying model
func (b *Bridge) Provider() Provider {
	return b.provider
}

// Ask sends the query in one call. Both prompt and image go in a single
// request, prompt first.
func (b *Bridge) Ask(ctx context.Context, q models.QAQuery) (*models.QAResponse, error) {
	if q.Empty() {
		return nil, ErrMissingInput
	}

	image := q.Image
	if image != nil && len(image.Data) == 0 {
		image = nil
	}

	start := time.Now()
	text, err := b.provider.Generate(ctx, q.Prompt, image)
	if err != nil {
		return nil, &ModelError{Provider: b.provider.Name(), Err: err}
	}
	log.Printf("[Bridge] %s answered in %.2fs (prompt=%v image=%v, %d chars)",
		b.provider.Name(), time.Since(start).Seconds(), q.Prompt != "", image != nil, len(text))

	return &models.QAResponse{Text: text}, nil
}
