package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// The model output is untrusted; it is validated against an explicit schema
// before normalization instead of relying on lenient field-by-field decoding.
var extractionSchema = buildExtractionSchema()

func buildExtractionSchema() *openapi3.Schema {
	nullableString := openapi3.NewStringSchema().WithNullable()
	nullableNumber := openapi3.NewFloat64Schema().WithNullable()

	lineItem := openapi3.NewObjectSchema().
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("quantity", nullableNumber).
		WithProperty("unitPrice", nullableNumber).
		WithProperty("amount", openapi3.NewFloat64Schema())
	lineItem.Required = []string{"description", "amount"}

	return openapi3.NewObjectSchema().
		WithProperty("vendor", nullableString).
		WithProperty("date", nullableString).
		WithProperty("invoiceNumber", nullableString).
		WithProperty("lineItems", openapi3.NewArraySchema().WithItems(lineItem).WithNullable()).
		WithProperty("subtotal", nullableNumber).
		WithProperty("taxAmount", nullableNumber).
		WithProperty("taxRate", nullableNumber).
		WithProperty("total", nullableNumber).
		WithProperty("currency", nullableString).
		WithProperty("category", nullableString).
		WithProperty("notes", nullableString)
}

func validateExtractionJSON(raw string) error {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	if err := extractionSchema.VisitJSON(value); err != nil {
		return fmt.Errorf("model output does not match extraction schema: %w", err)
	}
	return nil
}
