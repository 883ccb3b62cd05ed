package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kito-labs/risiti/internal/core/billing"
	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/core/ports"
)

var supportedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type UploadBillUseCase struct {
	repo    ports.BillRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadBillUseCase(
	repo ports.BillRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadBillUseCase {
	return &UploadBillUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the receipt file, creates the bill in uploading status and
// hands the id to the extraction worker via the queue.
func (uc *UploadBillUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Bill, error) {
	if !supportedUploadTypes[mimeType] {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload receipt",
			fmt.Errorf("unsupported file type: %s", mimeType))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save receipt to object storage: %w", err)
	}

	bill := &domain.Bill{
		ID:          id,
		Date:        now.Format("2006-01-02"),
		LineItems:   []domain.LineItem{},
		Currency:    domain.DefaultCurrency,
		Status:      domain.StatusUploading,
		SourceFile:  filename,
		PreviewPath: storageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill record: %w", err)
	}

	if err := uc.queue.PublishBillUploaded(ctx, bill.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return bill, nil
}

// CreateManual creates an empty bill for hand entry, no file involved.
func (uc *UploadBillUseCase) CreateManual(ctx context.Context) (*domain.Bill, error) {
	bill := billing.NewManualBill()
	if err := uc.repo.Create(ctx, &bill); err != nil {
		return nil, fmt.Errorf("create manual bill: %w", err)
	}
	return &bill, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "receipt.bin"
	}
	return base
}
