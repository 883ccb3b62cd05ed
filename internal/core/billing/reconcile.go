package billing

import "github.com/kito-labs/risiti/internal/core/domain"

// Reconcile derives subtotal and total from the line items. With items
// present the two fields are read-only projections:
//
//	tax-inclusive: total = sum(amounts), subtotal = total - taxAmount
//	tax-exclusive: subtotal = sum(amounts), total = subtotal + taxAmount
//
// A tax amount larger than the item sum leaves a negative subtotal in
// inclusive mode; that value is preserved as-is, numeric hygiene is the
// caller's concern. Bills without line items keep their stored subtotal and
// total untouched. Applied on every read and every save, never persisted as
// an independently mutable pair while items exist.
func Reconcile(bill domain.Bill) domain.Bill {
	if len(bill.LineItems) == 0 {
		return bill
	}

	sum := 0.0
	for _, item := range bill.LineItems {
		sum += item.Amount
	}

	out := bill
	if bill.TaxInclusive {
		out.Total = sum
		out.Subtotal = sum - bill.TaxAmount
	} else {
		out.Subtotal = sum
		out.Total = sum + bill.TaxAmount
	}
	return out
}

// ApplySave runs the save transition: a bill edited out of error status
// becomes parsed; every other status is unchanged by a save.
func ApplySave(bill domain.Bill) domain.Bill {
	out := Reconcile(bill)
	if out.Status == domain.StatusError {
		out.Status = domain.StatusParsed
		out.ErrorMessage = ""
	}
	return out
}
