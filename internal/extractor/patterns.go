package extractor

import (
	"regexp"

	"github.com/facturaIA/docqa-service/internal/models"
)

// fieldPattern binds a field to the regex that finds it. group is the
// submatch holding the value; 0 means the whole match.
type fieldPattern struct {
	field models.FieldName
	re    *regexp.Regexp
	group int
}

// Patterns are tried in this order on every page. Formats are not validated:
// "30-09" is as good a date as "30-09-2024".
var patterns = []fieldPattern{
	{field: models.FieldInvoiceNo, re: regexp.MustCompile(`Invoice No\.\s*(\d+)`), group: 1},
	{field: models.FieldInvoiceDate, re: regexp.MustCompile(`Date\s*[:\s]*([\d-]+)`), group: 1},
	{field: models.FieldGrandTotal, re: regexp.MustCompile(`Grand Total\s*[:\s]*([\d.,]+)`), group: 1},
	// 13-digit barcode anywhere on the page, not label-anchored
	{field: models.FieldBarcodeNo, re: regexp.MustCompile(`\b\d{13}\b`), group: 0},
}

// MatchPage returns the first match of each field pattern on one page of text
func MatchPage(text string, page int) []models.ExtractedField {
	var fields []models.ExtractedField
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fields = append(fields, models.ExtractedField{
			Field: p.field,
			Value: m[p.group],
			Page:  page,
		})
	}
	return fields
}
