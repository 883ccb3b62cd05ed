package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kito-labs/risiti/internal/core/billing"
	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/core/ports"
)

type ParseReceiptUseCase struct {
	repo      ports.BillRepository
	storage   ports.ObjectStorage
	extractor ports.ReceiptExtractor
	fallback  ports.TextExtractor

	onTextFallback func()
}

func NewParseReceiptUseCase(
	repo ports.BillRepository,
	storage ports.ObjectStorage,
	extractor ports.ReceiptExtractor,
	fallback ports.TextExtractor,
) *ParseReceiptUseCase {
	return &ParseReceiptUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		fallback:  fallback,
	}
}

// SetTextFallbackHook registers a callback fired whenever a parse succeeds via
// the text-layer fallback instead of vision extraction.
func (uc *ParseReceiptUseCase) SetTextFallbackHook(fn func()) {
	uc.onTextFallback = fn
}

// ParseByID runs the extraction pipeline for one uploaded bill:
// uploading -> parsing -> parsed, or -> error with a human-readable message.
// Neither terminal state ever returns to uploading or parsing.
func (uc *ParseReceiptUseCase) ParseByID(ctx context.Context, billID string) error {
	bill, err := uc.repo.GetByID(ctx, billID)
	if err != nil {
		return fmt.Errorf("fetch bill by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, billID, domain.StatusParsing, ""); err != nil {
		return fmt.Errorf("set status=parsing: %w", err)
	}

	raw, err := uc.extract(ctx, bill)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, billID, domain.StatusError, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	parsed := billing.Reconcile(billing.MergeExtraction(*bill, raw))
	if err := uc.repo.Update(ctx, &parsed); err != nil {
		return fmt.Errorf("save parsed bill: %w", err)
	}

	return nil
}

func (uc *ParseReceiptUseCase) extract(ctx context.Context, bill *domain.Bill) (domain.ExtractedReceipt, error) {
	mimeType := mimeTypeForStoredFile(bill)

	data, err := uc.readSource(ctx, bill)
	if err != nil {
		return domain.ExtractedReceipt{}, err
	}

	raw, visionErr := uc.extractor.ExtractFromFile(ctx, mimeType, data)
	if visionErr == nil {
		return raw, nil
	}

	// Vision extraction is the primary path. When it fails for a PDF we still
	// have the embedded text layer to fall back on.
	if uc.fallback != nil && mimeType == "application/pdf" {
		text, textErr := uc.fallback.Extract(ctx, mimeType, data)
		if textErr == nil && text != "" {
			raw, err := uc.extractor.ExtractFromText(ctx, text)
			if err == nil {
				if uc.onTextFallback != nil {
					uc.onTextFallback()
				}
				return raw, nil
			}
		}
	}

	return domain.ExtractedReceipt{}, fmt.Errorf("extract receipt data: %w", visionErr)
}

func (uc *ParseReceiptUseCase) readSource(ctx context.Context, bill *domain.Bill) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, bill.PreviewPath)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return data, nil
}

func mimeTypeForStoredFile(bill *domain.Bill) string {
	switch strings.ToLower(filepath.Ext(bill.SourceFile)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
