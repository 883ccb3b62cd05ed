package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kito-labs/risiti/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*BillRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &BillRepository{db: db}, mock, func() { _ = db.Close() }
}

func billRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "vendor", "bill_date", "invoice_number", "line_items",
		"subtotal", "tax_amount", "tax_rate", "tax_inclusive", "total",
		"currency", "category", "notes", "status", "error_message",
		"source_file", "preview_path", "created_at", "updated_at",
	})
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, vendor, bill_date").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansLineItemsFromJSON(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	itemsJSON := `[{"id":"li-1","description":"Paper","quantity":2,"unit_price":500,"amount":1000}]`
	mock.ExpectQuery("SELECT id, vendor, bill_date").
		WithArgs("bill-1").
		WillReturnRows(billRows().AddRow(
			"bill-1", "Shop X", "2025-06-01", "INV-9", []byte(itemsJSON),
			1000.0, 180.0, 0.18, true, 1000.0,
			"TZS", "Office Supplies", "", "parsed", "",
			"receipt.jpg", "bill-1_receipt.jpg", now, now,
		))

	bill, err := repo.GetByID(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(bill.LineItems) != 1 || bill.LineItems[0].Description != "Paper" {
		t.Fatalf("unexpected line items: %+v", bill.LineItems)
	}
	if bill.LineItems[0].Quantity == nil || *bill.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected quantity: %+v", bill.LineItems[0].Quantity)
	}
	if bill.Status != domain.StatusParsed {
		t.Fatalf("unexpected status: %q", bill.Status)
	}
	if bill.TaxRate == nil || *bill.TaxRate != 0.18 {
		t.Fatalf("unexpected tax rate: %+v", bill.TaxRate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE bills").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Bill{ID: "missing", Status: domain.StatusParsed})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM bills").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateMarshalsEmptyLineItemsAsArray(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO bills").
		WithArgs(
			"bill-1", "", "2025-06-01", "", []byte("[]"),
			0.0, 0.0, nil, false, 0.0,
			"TZS", "", "", "manual", "",
			"", "", now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Bill{
		ID:        "bill-1",
		Date:      "2025-06-01",
		Currency:  "TZS",
		Status:    domain.StatusManual,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListAppliesLimit(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, vendor, bill_date").
		WithArgs(1).
		WillReturnRows(billRows().AddRow(
			"bill-1", "Shop X", "2025-06-01", "", []byte("[]"),
			0.0, 0.0, nil, false, 5000.0,
			"TZS", "", "", "parsed", "",
			"", "", now, now,
		))

	bills, err := repo.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bills) != 1 || bills[0].ID != "bill-1" {
		t.Fatalf("unexpected bills: %+v", bills)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
