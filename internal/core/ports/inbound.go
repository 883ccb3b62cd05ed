package ports

import (
	"context"
	"io"

	"github.com/kito-labs/risiti/internal/core/domain"
)

// BillIngestor is the inbound contract for receipt upload orchestration.
type BillIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Bill, error)
	CreateManual(ctx context.Context) (*domain.Bill, error)
}

// BillParser is the inbound contract for asynchronous receipt extraction.
type BillParser interface {
	ParseByID(ctx context.Context, billID string) error
}

// BillEditor is the inbound contract for reads, edits and deletion.
type BillEditor interface {
	Get(ctx context.Context, id string) (*domain.Bill, error)
	List(ctx context.Context) ([]domain.Bill, error)
	Save(ctx context.Context, id string, edit domain.BillEdit) (*domain.Bill, error)
	Delete(ctx context.Context, id string) error
}

// BillExportService renders the stored bills for download.
type BillExportService interface {
	Export(ctx context.Context, format domain.ExportFormat, fileType domain.ExportFileType) ([]byte, string, error)
}
