package ports

import (
	"context"
	"io"

	"github.com/kito-labs/risiti/internal/core/domain"
)

// BillRepository persists and reads bill state.
type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	GetByID(ctx context.Context, id string) (*domain.Bill, error)
	List(ctx context.Context, limit int) ([]domain.Bill, error)
	Update(ctx context.Context, bill *domain.Bill) error
	UpdateStatus(ctx context.Context, id string, status domain.BillStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores the uploaded receipt files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes receipt upload events.
type MessageQueue interface {
	PublishBillUploaded(ctx context.Context, billID string) error
	SubscribeBillUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// ReceiptExtractor turns a receipt into a structured payload via the LLM API.
type ReceiptExtractor interface {
	ExtractFromFile(ctx context.Context, mimeType string, data []byte) (domain.ExtractedReceipt, error)
	ExtractFromText(ctx context.Context, text string) (domain.ExtractedReceipt, error)
}

// TextExtractor pulls plain text out of a stored receipt file, used as the
// fallback path when vision extraction is unavailable.
type TextExtractor interface {
	Extract(ctx context.Context, mimeType string, data []byte) (string, error)
}

// BillExporter renders bills into an accounting-software interchange file.
type BillExporter interface {
	Render(bills []domain.Bill, format domain.ExportFormat, fileType domain.ExportFileType) ([]byte, error)
}
