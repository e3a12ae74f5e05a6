package extractor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaIA/docqa-service/internal/models"
)

type fakeDocument struct {
	pages  []string
	failAt int
	closed bool
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) PageText(index int) (string, error) {
	if d.failAt >= 0 && index == d.failAt {
		return "", errors.New("corrupt content stream")
	}
	return d.pages[index], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func pagesOpener(doc *fakeDocument) Opener {
	return func() (Document, error) { return doc, nil }
}

func newDoc(pages ...string) *fakeDocument {
	return &fakeDocument{pages: pages, failAt: -1}
}

func TestMatchPage_SingleField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field models.FieldName
		value string
	}{
		{"invoice number", "Invoice No. 4711", models.FieldInvoiceNo, "4711"},
		{"invoice number no space", "Invoice No.23", models.FieldInvoiceNo, "23"},
		{"date with colon", "Date: 30-09-2024", models.FieldInvoiceDate, "30-09-2024"},
		{"partial date", "Date 30-09", models.FieldInvoiceDate, "30-09"},
		{"grand total", "Grand Total: 1,234.50", models.FieldGrandTotal, "1,234.50"},
		{"barcode", "code 4006381333931 end", models.FieldBarcodeNo, "4006381333931"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := MatchPage(tt.text, 3)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
			assert.Equal(t, tt.value, fields[0].Value)
			assert.Equal(t, 3, fields[0].Page)
			assert.Nil(t, fields[0].BoundingBox)
		})
	}
}

func TestMatchPage_FieldOrder(t *testing.T) {
	text := "1234567890123\nGrand Total: 99.00\nDate: 01-01-2024\nInvoice No. 7"
	fields := MatchPage(text, 0)

	require.Len(t, fields, 4)
	assert.Equal(t, models.FieldInvoiceNo, fields[0].Field)
	assert.Equal(t, models.FieldInvoiceDate, fields[1].Field)
	assert.Equal(t, models.FieldGrandTotal, fields[2].Field)
	assert.Equal(t, models.FieldBarcodeNo, fields[3].Field)
}

func TestMatchPage_FirstMatchPerPage(t *testing.T) {
	fields := MatchPage("Invoice No. 1\nInvoice No. 2", 0)
	require.Len(t, fields, 1)
	assert.Equal(t, "1", fields[0].Value)
}

func TestMatchPage_BarcodeBoundary(t *testing.T) {
	assert.Empty(t, MatchPage("ref 12345678901234 ref", 0), "14 digits must not match")
	assert.Empty(t, MatchPage("ref 123456789012 ref", 0), "12 digits must not match")

	fields := MatchPage("ref:1234567890123.", 0)
	require.Len(t, fields, 1)
	assert.Equal(t, "1234567890123", fields[0].Value)

	fields = MatchPage("1234567890123", 0)
	require.Len(t, fields, 1)
}

func TestExtract_MultiPageAggregation(t *testing.T) {
	doc := newDoc("Invoice No. 123", "Grand Total: 45.00")

	result, err := New().Extract(pagesOpener(doc))
	require.NoError(t, err)

	assert.Equal(t, []models.ExtractedField{
		{Field: models.FieldInvoiceNo, Value: "123", Page: 0},
		{Field: models.FieldGrandTotal, Value: "45.00", Page: 1},
	}, result.Fields)
	assert.Equal(t, 4, result.TotalFields)
	assert.Equal(t, 2, result.FieldsExtracted)
	assert.Equal(t, 0.5, result.Accuracy)
	assert.True(t, doc.closed)
}

func TestExtract_DuplicatesKeptAndAccuracyUnclamped(t *testing.T) {
	full := "Invoice No. 9 Date: 01-02-2024 Grand Total 10.00 0000000000001"
	doc := newDoc(full, "Invoice No. 9")

	result, err := New().Extract(pagesOpener(doc))
	require.NoError(t, err)

	assert.Equal(t, 5, result.FieldsExtracted)
	assert.Len(t, result.Fields, 5)
	assert.Equal(t, 1.25, result.Accuracy)
	assert.Equal(t, 1, result.Fields[4].Page)
}

func TestExtract_EmptyPagesSkippedButCounted(t *testing.T) {
	doc := newDoc("", "", "Date: 2024-01-31")

	result, err := New().Extract(pagesOpener(doc))
	require.NoError(t, err)

	require.Len(t, result.Fields, 1)
	assert.Equal(t, 2, result.Fields[0].Page)
	assert.Equal(t, 0.25, result.Accuracy)
}

func TestExtract_Idempotent(t *testing.T) {
	doc := newDoc("Invoice No. 5 Date: 1-2", "Grand Total: 3 4006381333931")

	first, err := New().Extract(pagesOpener(doc))
	require.NoError(t, err)
	second, err := New().Extract(pagesOpener(doc))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_OpenFailure(t *testing.T) {
	open := func() (Document, error) { return nil, errors.New("not a PDF file") }

	result, err := New().Extract(open)

	var readErr *DocumentReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, -1, readErr.Page)
	require.NotNil(t, result)
	assert.Empty(t, result.Fields)
	assert.Equal(t, 0, result.FieldsExtracted)
	assert.Equal(t, 0.0, result.Accuracy)
	assert.Equal(t, 4, result.TotalFields)
}

func TestExtract_PageFailureKeepsPartialResult(t *testing.T) {
	doc := newDoc("Invoice No. 1", "broken", "Invoice No. 3")
	doc.failAt = 1

	result, err := New().Extract(pagesOpener(doc))

	var readErr *DocumentReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, 1, readErr.Page)
	assert.Equal(t, 1, result.FieldsExtracted)
	assert.Equal(t, 0.0, result.Accuracy)
	assert.True(t, doc.closed)
}

func TestAccuracy(t *testing.T) {
	for k := 0; k <= 8; k++ {
		assert.Equal(t, float64(k)/4, Accuracy(k, 4), "k=%d", k)
	}
	assert.Equal(t, 0.75, Accuracy(3, 4))
	assert.Equal(t, 1.25, Accuracy(5, 4))
	assert.Equal(t, 0.0, Accuracy(3, 0))
}

func TestExtractionResult_JSONShape(t *testing.T) {
	result, err := New().Extract(pagesOpener(newDoc("Invoice No. 23")))
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fields": [{"field": "Invoice No.", "value": "23", "bounding_box": [], "page": 0}],
		"total_fields": 4,
		"fields_extracted": 1,
		"accuracy": 0.25
	}`, string(data))

	empty, err := json.Marshal(models.NewExtractionResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": [], "total_fields": 4, "fields_extracted": 0, "accuracy": 0}`, string(empty))
}
