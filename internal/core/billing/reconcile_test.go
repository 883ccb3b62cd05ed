package billing

import (
	"testing"

	"github.com/kito-labs/risiti/internal/core/domain"
)

func billWithItems(taxInclusive bool, taxAmount float64, amounts ...float64) domain.Bill {
	items := make([]domain.LineItem, 0, len(amounts))
	for i, amount := range amounts {
		items = append(items, domain.LineItem{ID: string(rune('a' + i)), Amount: amount})
	}
	return domain.Bill{
		ID:           "bill-1",
		LineItems:    items,
		TaxAmount:    taxAmount,
		TaxInclusive: taxInclusive,
		Status:       domain.StatusParsed,
	}
}

func TestReconcileTaxExclusive(t *testing.T) {
	out := Reconcile(billWithItems(false, 1800, 4000, 6000))
	if out.Subtotal != 10000 {
		t.Fatalf("expected subtotal 10000, got %f", out.Subtotal)
	}
	if out.Total != 11800 {
		t.Fatalf("expected total 11800, got %f", out.Total)
	}
}

func TestReconcileTaxInclusive(t *testing.T) {
	out := Reconcile(billWithItems(true, 1800, 4000, 7800))
	if out.Total != 11800 {
		t.Fatalf("expected total 11800, got %f", out.Total)
	}
	if out.Subtotal != 10000 {
		t.Fatalf("expected subtotal 10000, got %f", out.Subtotal)
	}
}

func TestReconcileInclusiveAllowsNegativeSubtotal(t *testing.T) {
	// Tax larger than the item sum back-calculates below zero; accepted, not
	// clamped.
	out := Reconcile(billWithItems(true, 5000, 3000))
	if out.Subtotal != -2000 {
		t.Fatalf("expected subtotal -2000, got %f", out.Subtotal)
	}
	if out.Total != 3000 {
		t.Fatalf("expected total 3000, got %f", out.Total)
	}
}

func TestReconcileLeavesItemlessBillAlone(t *testing.T) {
	bill := domain.Bill{ID: "bill-1", Subtotal: 123, TaxAmount: 7, Total: 999}
	out := Reconcile(bill)
	if out.Subtotal != 123 || out.Total != 999 {
		t.Fatalf("itemless bill must keep raw values, got %+v", out)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	once := Reconcile(billWithItems(false, 500, 100, 200, 300))
	twice := Reconcile(once)
	if once.Subtotal != twice.Subtotal || once.Total != twice.Total {
		t.Fatalf("reconciliation must be stable: %+v vs %+v", once, twice)
	}
}

func TestApplySaveClearsErrorStatus(t *testing.T) {
	bill := billWithItems(false, 0, 100)
	bill.Status = domain.StatusError
	bill.ErrorMessage = "model unavailable"

	out := ApplySave(bill)
	if out.Status != domain.StatusParsed {
		t.Fatalf("expected error -> parsed on save, got %q", out.Status)
	}
	if out.ErrorMessage != "" {
		t.Fatalf("expected cleared error message, got %q", out.ErrorMessage)
	}
}

func TestApplySaveKeepsOtherStatuses(t *testing.T) {
	for _, status := range []domain.BillStatus{domain.StatusParsed, domain.StatusManual} {
		bill := billWithItems(false, 0, 100)
		bill.Status = status
		if out := ApplySave(bill); out.Status != status {
			t.Fatalf("save must not change status %q, got %q", status, out.Status)
		}
	}
}
