package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kito-labs/risiti/internal/core/domain"
)

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *BillRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS bills (
	id TEXT PRIMARY KEY,
	vendor TEXT NOT NULL DEFAULT '',
	bill_date TEXT NOT NULL DEFAULT '',
	invoice_number TEXT NOT NULL DEFAULT '',
	line_items JSONB NOT NULL DEFAULT '[]'::jsonb,
	subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
	tax_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	tax_rate DOUBLE PRECISION,
	tax_inclusive BOOLEAN NOT NULL DEFAULT FALSE,
	total DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'TZS',
	category TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	source_file TEXT NOT NULL DEFAULT '',
	preview_path TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status);
CREATE INDEX IF NOT EXISTS idx_bills_created_at ON bills(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const billColumns = `id, vendor, bill_date, invoice_number, line_items, subtotal, tax_amount, tax_rate, tax_inclusive, total, currency, category, notes, status, error_message, source_file, preview_path, created_at, updated_at`

func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	itemsJSON, err := marshalLineItems(bill.LineItems)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO bills (
	`+billColumns+`
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`,
		bill.ID, bill.Vendor, bill.Date, bill.InvoiceNumber, itemsJSON,
		bill.Subtotal, bill.TaxAmount, bill.TaxRate, bill.TaxInclusive, bill.Total,
		bill.Currency, bill.Category, bill.Notes, string(bill.Status), bill.ErrorMessage,
		bill.SourceFile, bill.PreviewPath, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+billColumns+`
FROM bills
WHERE id = $1
`, id)

	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBillNotFound, "get bill", err)
		}
		return nil, err
	}
	return bill, nil
}

func (r *BillRepository) List(ctx context.Context, limit int) ([]domain.Bill, error) {
	query := `
SELECT ` + billColumns + `
FROM bills
ORDER BY created_at DESC
`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+`LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

func (r *BillRepository) Update(ctx context.Context, bill *domain.Bill) error {
	itemsJSON, err := marshalLineItems(bill.LineItems)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE bills
SET vendor = $2, bill_date = $3, invoice_number = $4, line_items = $5,
	subtotal = $6, tax_amount = $7, tax_rate = $8, tax_inclusive = $9, total = $10,
	currency = $11, category = $12, notes = $13, status = $14, error_message = $15,
	source_file = $16, preview_path = $17, updated_at = $18
WHERE id = $1
`,
		bill.ID, bill.Vendor, bill.Date, bill.InvoiceNumber, itemsJSON,
		bill.Subtotal, bill.TaxAmount, bill.TaxRate, bill.TaxInclusive, bill.Total,
		bill.Currency, bill.Category, bill.Notes, string(bill.Status), bill.ErrorMessage,
		bill.SourceFile, bill.PreviewPath, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrBillNotFound, "update bill", sql.ErrNoRows)
	}
	return nil
}

func (r *BillRepository) UpdateStatus(ctx context.Context, id string, status domain.BillStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE bills
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	return nil
}

func (r *BillRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrBillNotFound, "delete bill", sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*domain.Bill, error) {
	var bill domain.Bill
	var itemsRaw []byte
	var status string

	err := row.Scan(
		&bill.ID, &bill.Vendor, &bill.Date, &bill.InvoiceNumber, &itemsRaw,
		&bill.Subtotal, &bill.TaxAmount, &bill.TaxRate, &bill.TaxInclusive, &bill.Total,
		&bill.Currency, &bill.Category, &bill.Notes, &status, &bill.ErrorMessage,
		&bill.SourceFile, &bill.PreviewPath, &bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bill: %w", err)
	}

	if err := json.Unmarshal(itemsRaw, &bill.LineItems); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	bill.Status = domain.BillStatus(status)
	return &bill, nil
}

func marshalLineItems(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	return raw, nil
}
