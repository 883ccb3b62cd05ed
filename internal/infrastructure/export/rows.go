package export

import (
	"strconv"
	"strings"

	"github.com/kito-labs/risiti/internal/core/domain"
)

// exportItems returns the rows to emit for a bill: its line items, or a single
// synthetic row carrying the bill total when it has none.
func exportItems(bill domain.Bill) []domain.LineItem {
	if len(bill.LineItems) > 0 {
		return bill.LineItems
	}
	return []domain.LineItem{{Amount: bill.Total}}
}

func (e *Exporter) xeroRows(bills []domain.Bill) [][]string {
	rows := [][]string{{
		"ContactName", "EmailAddress", "InvoiceDate", "DueDate", "InvoiceNumber",
		"Reference", "Description", "Quantity", "UnitAmount", "AccountCode",
		"TaxType", "Currency",
	}}

	for _, bill := range bills {
		taxType := "Tax Exclusive"
		if bill.TaxAmount > 0 {
			taxType = "Tax Inclusive"
		}
		for idx, item := range exportItems(bill) {
			invoiceNumber := ""
			if idx == 0 {
				invoiceNumber = bill.InvoiceNumber
			}
			rows = append(rows, []string{
				bill.Vendor,
				"",
				formatDateXero(bill.Date),
				formatDateXero(bill.Date),
				invoiceNumber,
				"",
				item.Description,
				quantityOrOne(item),
				unitPriceOrAmount(item),
				e.accounts.Code(bill.Category),
				taxType,
				currencyOrDefault(bill.Currency),
			})
		}
	}
	return rows
}

func (e *Exporter) quickBooksRows(bills []domain.Bill) [][]string {
	rows := [][]string{{
		"Vendor", "TxnDate", "RefNumber", "Account", "Memo",
		"Description", "Quantity", "Rate", "Amount", "Currency",
	}}

	for _, bill := range bills {
		for idx, item := range exportItems(bill) {
			refNumber := ""
			if idx == 0 {
				refNumber = bill.InvoiceNumber
			}
			rows = append(rows, []string{
				bill.Vendor,
				formatDateUS(bill.Date),
				refNumber,
				"Accounts Payable",
				bill.Notes,
				item.Description,
				quantityOrOne(item),
				unitPriceOrAmount(item),
				formatNumber(item.Amount),
				currencyOrDefault(bill.Currency),
			})
		}
	}
	return rows
}

func (e *Exporter) genericRows(bills []domain.Bill) [][]string {
	rows := [][]string{{
		"ID", "Vendor", "Date", "InvoiceNumber", "Subtotal", "Tax",
		"Total", "Currency", "Category", "LineItems", "Notes",
	}}

	for _, bill := range bills {
		descriptions := make([]string, 0, len(bill.LineItems))
		for _, item := range bill.LineItems {
			descriptions = append(descriptions, item.Description)
		}
		rows = append(rows, []string{
			bill.ID,
			bill.Vendor,
			bill.Date,
			bill.InvoiceNumber,
			formatNumber(bill.Subtotal),
			formatNumber(bill.TaxAmount),
			formatNumber(bill.Total),
			currencyOrDefault(bill.Currency),
			bill.Category,
			strings.Join(descriptions, "; "),
			bill.Notes,
		})
	}
	return rows
}

// formatDateXero renders YYYY-MM-DD as DD/MM/YYYY.
func formatDateXero(isoDate string) string {
	parts := strings.SplitN(isoDate, "-", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// formatDateUS renders YYYY-MM-DD as MM/DD/YYYY.
func formatDateUS(isoDate string) string {
	parts := strings.SplitN(isoDate, "-", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[1] + "/" + parts[2] + "/" + parts[0]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quantityOrOne(item domain.LineItem) string {
	if item.Quantity != nil {
		return formatNumber(*item.Quantity)
	}
	return "1"
}

func unitPriceOrAmount(item domain.LineItem) string {
	if item.UnitPrice != nil {
		return formatNumber(*item.UnitPrice)
	}
	return formatNumber(item.Amount)
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return domain.DefaultCurrency
	}
	return currency
}
