package extractor

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/facturaIA/docqa-service/internal/models"
)

// Document is a multi-page text-bearing document
type Document interface {
	NumPages() int
	// PageText returns the plain text of the zero-based page. An empty
	// string means the page has no extractable text.
	PageText(index int) (string, error)
	Close() error
}

// Opener opens a document for one extraction call
type Opener func() (Document, error)

// DocumentReadError reports a document that could not be opened or read.
// Page is -1 when the failure happened while opening.
type DocumentReadError struct {
	Page int
	Err  error
}

func (e *DocumentReadError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("error processing PDF: %v", e.Err)
	}
	return fmt.Sprintf("error processing PDF page %d: %v", e.Page, e.Err)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// Extractor pulls the fixed set of invoice fields out of document text
type Extractor struct{}

// New creates a new rule-based extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract walks every page once and collects pattern matches.
//
// The returned result is never nil. When the document fails to open or a page
// fails to read, iteration stops, the matches gathered so far are returned
// together with a *DocumentReadError, and Accuracy is left at 0 because it is
// only computed after a complete pass.
func (e *Extractor) Extract(open Opener) (*models.ExtractionResult, error) {
	result := models.NewExtractionResult()

	doc, err := open()
	if err != nil {
		return result, &DocumentReadError{Page: -1, Err: err}
	}
	defer doc.Close()

	pages := doc.NumPages()
	for page := 0; page < pages; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return result, &DocumentReadError{Page: page, Err: err}
		}
		if text == "" {
			continue
		}
		for _, f := range MatchPage(text, page) {
			result.Add(f)
		}
	}

	result.Accuracy = Accuracy(result.FieldsExtracted, result.TotalFields)
	log.Printf("[Extractor] %d pages, %d fields, accuracy %.2f", pages, result.FieldsExtracted, result.Accuracy)
	return result, nil
}

// Accuracy is the plain ratio extracted/total. It is not clamped, so repeated
// matches across pages can push it above 1. A zero total yields 0.
func Accuracy(extracted, total int) float64 {
	if total == 0 {
		return 0
	}
	ratio, _ := decimal.NewFromInt(int64(extracted)).
		Div(decimal.NewFromInt(int64(total))).
		Float64()
	return ratio
}
