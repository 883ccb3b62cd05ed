package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/kito-labs/risiti/internal/core/domain"
)

const dateLayout = "2006-01-02"

// NewManualBill creates an empty bill for hand entry: no file, no extraction,
// today's date, default currency.
func NewManualBill() domain.Bill {
	now := time.Now().UTC()
	return domain.Bill{
		ID:        uuid.NewString(),
		Date:      now.Format(dateLayout),
		LineItems: []domain.LineItem{},
		Currency:  domain.DefaultCurrency,
		Status:    domain.StatusManual,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MergeExtraction fills a bill from a raw extraction payload. Identity and
// provenance (id, source file, preview, creation time) stay with the bill;
// every other field comes from the payload with the documented defaults:
// vendor -> "", date -> today, currency -> TZS, monetary fields -> 0,
// subtotal -> total - taxAmount when absent. Line items get fresh ids; an
// empty item list is replaced by a single synthesized item covering the total.
// The result is always in status parsed with a cleared error message.
func MergeExtraction(bill domain.Bill, raw domain.ExtractedReceipt) domain.Bill {
	out := bill

	out.Vendor = stringOr(raw.Vendor, "")
	out.Date = stringOr(raw.Date, time.Now().UTC().Format(dateLayout))
	out.InvoiceNumber = stringOr(raw.InvoiceNumber, "")
	out.Currency = stringOr(raw.Currency, domain.DefaultCurrency)
	out.Notes = stringOr(raw.Notes, "")
	out.TaxRate = raw.TaxRate

	// Categories outside the closed set are treated as unclassified rather
	// than rejected; the extraction prompt asks for exact values but the
	// model is not trusted to comply.
	out.Category = ""
	if raw.Category != nil && domain.IsExpenseCategory(*raw.Category) {
		out.Category = *raw.Category
	}

	total := floatOr(raw.Total, 0)
	taxAmount := floatOr(raw.TaxAmount, 0)
	out.Total = total
	out.TaxAmount = taxAmount
	out.Subtotal = floatOr(raw.Subtotal, total-taxAmount)

	items := make([]domain.LineItem, 0, len(raw.LineItems))
	for _, item := range raw.LineItems {
		items = append(items, domain.LineItem{
			ID:          uuid.NewString(),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	if len(items) == 0 {
		description := stringOr(raw.Vendor, "See receipt")
		if description == "" {
			description = "See receipt"
		}
		items = append(items, domain.LineItem{
			ID:          uuid.NewString(),
			Description: description,
			Amount:      total,
		})
	}
	out.LineItems = items

	out.Status = domain.StatusParsed
	out.ErrorMessage = ""
	return out
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func floatOr(f *float64, fallback float64) float64 {
	if f == nil {
		return fallback
	}
	return *f
}
