// Package submission routes one user submission to the extractor or the
// vision bridge.
package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/facturaIA/docqa-service/internal/ai"
	"github.com/facturaIA/docqa-service/internal/extractor"
	"github.com/facturaIA/docqa-service/internal/models"
	"github.com/facturaIA/docqa-service/internal/pdftext"
)

// MissingInputWarning is shown when nothing usable was submitted
const MissingInputWarning = "Please provide either a PDF file, input prompt, or an image."

var (
	// ErrUnsupportedMedia is returned for uploads that are neither PDF nor a supported image
	ErrUnsupportedMedia = errors.New("unsupported file type (use pdf, jpg, jpeg or png)")
	// ErrInvalidImage is returned when an image upload cannot be decoded
	ErrInvalidImage = errors.New("invalid image")
)

// Kind is the outcome of a submission
type Kind string

const (
	KindExtraction Kind = "extraction"
	KindAnswer     Kind = "answer"
	KindWarning    Kind = "warning"
)

// Submission is one press of "submit": an optional artifact and an optional prompt
type Submission struct {
	Prompt string
	File   *models.Upload
}

// Outcome is what gets shown for a submission. Notices carries errors that
// were recovered locally, such as an unreadable PDF.
type Outcome struct {
	ID         string                   `json:"id"`
	Kind       Kind                     `json:"kind"`
	Extraction *models.ExtractionResult `json:"extraction,omitempty"`
	Answer     string                   `json:"answer,omitempty"`
	Warning    string                   `json:"warning,omitempty"`
	Notices    []string                 `json:"errors,omitempty"`
}

// DocumentOpener turns PDF bytes into a readable document
type DocumentOpener func(data []byte) (extractor.Document, error)

// OpenPDF is the default DocumentOpener
func OpenPDF(data []byte) (extractor.Document, error) {
	doc, err := pdftext.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Dispatcher holds the two pipelines. It keeps no per-submission state.
type Dispatcher struct {
	extractor *extractor.Extractor
	bridge    *ai.Bridge
	open      DocumentOpener
}

// New creates a dispatcher. A nil opener selects OpenPDF.
func New(ext *extractor.Extractor, bridge *ai.Bridge, open DocumentOpener) *Dispatcher {
	if open == nil {
		open = OpenPDF
	}
	return &Dispatcher{
		extractor: ext,
		bridge:    bridge,
		open:      open,
	}
}

// Submit runs one submission to completion.
//
// A PDF always goes to the extractor; a prompt is ignored in that case.
// An image goes to the bridge with the prompt if one was given. Anything else,
// including a prompt with no image, yields a warning and no model call.
// Model failures are returned as errors; PDF read failures are not.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	out := &Outcome{ID: uuid.New().String()}

	if sub.File == nil || len(sub.File.Data) == 0 {
		out.Kind = KindWarning
		out.Warning = MissingInputWarning
		log.Printf("[Submit %s] no input", out.ID[:8])
		return out, nil
	}

	mediaType := DetectContentType(sub.File)
	switch {
	case mediaType == "application/pdf":
		result, err := d.ExtractPDF(sub.File.Data)
		out.Kind = KindExtraction
		out.Extraction = result
		if err != nil {
			log.Printf("[Submit %s] %v", out.ID[:8], err)
			out.Notices = append(out.Notices, err.Error())
		}
		return out, nil

	case mediaType == "image/jpeg" || mediaType == "image/png":
		img, err := DecodeImage(sub.File.Data)
		if err != nil {
			return nil, err
		}
		resp, err := d.bridge.Ask(ctx, models.QAQuery{Prompt: sub.Prompt, Image: img})
		if err != nil {
			return nil, err
		}
		out.Kind = KindAnswer
		out.Answer = resp.Text
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mediaType)
	}
}

// ExtractPDF runs the extractor over PDF bytes. The result is never nil.
func (d *Dispatcher) ExtractPDF(data []byte) (*models.ExtractionResult, error) {
	return d.extractor.Extract(func() (extractor.Document, error) {
		return d.open(data)
	})
}

// Ask forwards a query to the bridge
func (d *Dispatcher) Ask(ctx context.Context, q models.QAQuery) (*models.QAResponse, error) {
	return d.bridge.Ask(ctx, q)
}

// DetectContentType trusts a specific declared type and sniffs the bytes
// otherwise
func DetectContentType(u *models.Upload) string {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if pdftext.IsPDF(u.Data) {
		return "application/pdf"
	}
	return strings.Split(http.DetectContentType(u.Data), ";")[0]
}

// DecodeImage checks that data is a decodable jpeg or png image. The MIME
// type comes from the decoded format, not from what the caller declared.
func DecodeImage(data []byte) (*models.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return &models.Image{Data: data, MIMEType: "image/" + format}, nil
}

// NewFromConfig wires the extractor, the configured provider and the PDF
// reader. providerName and modelName may be empty to use the defaults.
func NewFromConfig(cfg models.AIConfig, providerName, modelName string) (*Dispatcher, error) {
	provider, err := ai.NewProvider(cfg, providerName, modelName)
	if err != nil {
		return nil, err
	}
	return New(extractor.New(), ai.NewBridge(provider), OpenPDF), nil
}

// ProviderName returns the name of the model behind the bridge
func (d *Dispatcher) ProviderName() string {
	return d.bridge.Provider().Name()
}
