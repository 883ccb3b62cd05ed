package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kito-labs/risiti/internal/core/billing"
	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/core/ports"
)

type EditBillUseCase struct {
	repo      ports.BillRepository
	listLimit int
}

func NewEditBillUseCase(repo ports.BillRepository) *EditBillUseCase {
	return &EditBillUseCase{repo: repo}
}

// SetListLimit caps how many bills List returns; zero means unlimited.
func (uc *EditBillUseCase) SetListLimit(limit int) {
	uc.listLimit = limit
}

func (uc *EditBillUseCase) Get(ctx context.Context, id string) (*domain.Bill, error) {
	bill, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch bill: %w", err)
	}
	reconciled := billing.Reconcile(*bill)
	return &reconciled, nil
}

func (uc *EditBillUseCase) List(ctx context.Context) ([]domain.Bill, error) {
	bills, err := uc.repo.List(ctx, uc.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	for i := range bills {
		bills[i] = billing.Reconcile(bills[i])
	}
	return bills, nil
}

// Save applies a user edit, reconciles the totals and persists the result.
// Saving a bill in error status moves it to parsed.
func (uc *EditBillUseCase) Save(ctx context.Context, id string, edit domain.BillEdit) (*domain.Bill, error) {
	if edit.Category != "" && !domain.IsExpenseCategory(edit.Category) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save bill",
			fmt.Errorf("unknown category: %q", edit.Category))
	}

	bill, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch bill: %w", err)
	}

	applyEdit(bill, edit)
	saved := billing.ApplySave(*bill)
	saved.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, &saved); err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return &saved, nil
}

func (uc *EditBillUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

func applyEdit(bill *domain.Bill, edit domain.BillEdit) {
	bill.Vendor = edit.Vendor
	bill.Date = edit.Date
	bill.InvoiceNumber = edit.InvoiceNumber
	bill.Subtotal = edit.Subtotal
	bill.TaxAmount = edit.TaxAmount
	bill.TaxRate = edit.TaxRate
	bill.TaxInclusive = edit.TaxInclusive
	bill.Total = edit.Total
	bill.Category = edit.Category
	bill.Notes = edit.Notes

	bill.Currency = edit.Currency
	if bill.Currency == "" {
		bill.Currency = domain.DefaultCurrency
	}

	// Rows added in the editor arrive without ids; existing rows keep theirs.
	items := make([]domain.LineItem, 0, len(edit.LineItems))
	seen := make(map[string]bool, len(edit.LineItems))
	for _, item := range edit.LineItems {
		if item.ID == "" || seen[item.ID] {
			item.ID = uuid.NewString()
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	bill.LineItems = items
}
