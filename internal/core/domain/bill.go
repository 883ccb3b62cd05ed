package domain

import "time"

type BillStatus string

const (
	StatusUploading BillStatus = "uploading"
	StatusParsing   BillStatus = "parsing"
	StatusParsed    BillStatus = "parsed"
	StatusError     BillStatus = "error"
	StatusManual    BillStatus = "manual"
)

// DefaultCurrency is applied wherever an extraction or a manual bill carries no
// currency of its own.
const DefaultCurrency = "TZS"

// LineItem is one row of a bill. Amount is the authoritative line total and is
// not required to equal Quantity * UnitPrice.
type LineItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      float64  `json:"amount"`
}

// Bill is a single expense/receipt record. Subtotal and Total are derived from
// the line items whenever LineItems is non-empty (see billing.Reconcile); they
// are free-standing values only for bills without items.
type Bill struct {
	ID            string     `json:"id"`
	Vendor        string     `json:"vendor"`
	Date          string     `json:"date"` // YYYY-MM-DD
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	LineItems     []LineItem `json:"line_items"`
	Subtotal      float64    `json:"subtotal"`
	TaxAmount     float64    `json:"tax_amount"`
	TaxRate       *float64   `json:"tax_rate"`
	TaxInclusive  bool       `json:"tax_inclusive"`
	Total         float64    `json:"total"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        BillStatus `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	SourceFile    string     `json:"source_file,omitempty"`
	PreviewPath   string     `json:"preview_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BillEdit is a user-submitted edit of a bill. Subtotal and Total are taken
// as-is only for bills without line items; otherwise the reconciliation rule
// overwrites them. Line items without an id are treated as new rows.
type BillEdit struct {
	Vendor        string     `json:"vendor"`
	Date          string     `json:"date"`
	InvoiceNumber string     `json:"invoice_number"`
	LineItems     []LineItem `json:"line_items"`
	Subtotal      float64    `json:"subtotal"`
	TaxAmount     float64    `json:"tax_amount"`
	TaxRate       *float64   `json:"tax_rate"`
	TaxInclusive  bool       `json:"tax_inclusive"`
	Total         float64    `json:"total"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category"`
	Notes         string     `json:"notes"`
}

// ExpenseCategories is the closed set of bill categories. Matching is
// case-sensitive; anything else is rejected on edit.
var ExpenseCategories = []string{
	"Office Supplies",
	"Travel & Transport",
	"Utilities",
	"Meals & Entertainment",
	"Professional Services",
	"IT & Software",
	"Rent",
	"Marketing & Advertising",
	"Equipment",
	"Other",
}

func IsExpenseCategory(s string) bool {
	for _, c := range ExpenseCategories {
		if s == c {
			return true
		}
	}
	return false
}

type ExportFormat string

const (
	ExportXero       ExportFormat = "xero"
	ExportQuickBooks ExportFormat = "quickbooks"
	ExportGeneric    ExportFormat = "generic"
)

type ExportFileType string

const (
	ExportCSV  ExportFileType = "csv"
	ExportXLSX ExportFileType = "xlsx"
)
