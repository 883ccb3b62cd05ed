package domain

// ExtractedReceipt is the raw structured payload returned by the LLM
// extraction endpoint. Every field is nullable; defaulting happens in the
// billing package, not here.
type ExtractedReceipt struct {
	Vendor        *string             `json:"vendor"`
	Date          *string             `json:"date"`
	InvoiceNumber *string             `json:"invoiceNumber"`
	LineItems     []ExtractedLineItem `json:"lineItems"`
	Subtotal      *float64            `json:"subtotal"`
	TaxAmount     *float64            `json:"taxAmount"`
	TaxRate       *float64            `json:"taxRate"`
	Total         *float64            `json:"total"`
	Currency      *string             `json:"currency"`
	Category      *string             `json:"category"`
	Notes         *string             `json:"notes"`
}

type ExtractedLineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Amount      float64  `json:"amount"`
}
