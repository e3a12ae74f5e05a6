package models

import "encoding/json"

// FieldName identifies one of the invoice attributes the extractor looks for
type FieldName string

const (
	FieldInvoiceNo   FieldName = "Invoice No."
	FieldInvoiceDate FieldName = "invoice_date"
	FieldGrandTotal  FieldName = "grand_total"
	FieldBarcodeNo   FieldName = "barcode_no"
)

// TotalFields is the number of field types a single invoice is expected to carry
const TotalFields = 4

// BoundingBox is reserved for OCR-based localization. It is never populated
// and always serializes as an empty list.
type BoundingBox []float64

// MarshalJSON writes [] for a nil box instead of null
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]float64(b))
}

// ExtractedField is a single pattern match found on one page
type ExtractedField struct {
	Field       FieldName   `json:"field"`
	Value       string      `json:"value"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Page        int         `json:"page"`
}

// ExtractionResult is the structured record returned for a PDF submission.
// Accuracy is FieldsExtracted / TotalFields and may exceed 1.0 when several
// pages contribute the same field.
type ExtractionResult struct {
	Fields          []ExtractedField `json:"fields"`
	TotalFields     int              `json:"total_fields"`
	FieldsExtracted int              `json:"fields_extracted"`
	Accuracy        float64          `json:"accuracy"`
}

// NewExtractionResult returns an empty result ready for accumulation
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Fields:      []ExtractedField{},
		TotalFields: TotalFields,
	}
}

// Add appends a field and bumps the extracted count
func (r *ExtractionResult) Add(f ExtractedField) {
	r.Fields = append(r.Fields, f)
	r.FieldsExtracted++
}
