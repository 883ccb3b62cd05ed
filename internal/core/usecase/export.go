package usecase

import (
	"context"
	"fmt"

	"github.com/kito-labs/risiti/internal/core/billing"
	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/core/ports"
)

type ExportBillsUseCase struct {
	repo     ports.BillRepository
	exporter ports.BillExporter
}

func NewExportBillsUseCase(repo ports.BillRepository, exporter ports.BillExporter) *ExportBillsUseCase {
	return &ExportBillsUseCase{repo: repo, exporter: exporter}
}

// Export renders every stored bill in the requested accounting format and
// returns the file bytes together with a download filename.
func (uc *ExportBillsUseCase) Export(
	ctx context.Context,
	format domain.ExportFormat,
	fileType domain.ExportFileType,
) ([]byte, string, error) {
	switch format {
	case domain.ExportXero, domain.ExportQuickBooks, domain.ExportGeneric:
	default:
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "export bills",
			fmt.Errorf("unknown format: %q", format))
	}
	switch fileType {
	case domain.ExportCSV, domain.ExportXLSX:
	default:
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "export bills",
			fmt.Errorf("unknown file type: %q", fileType))
	}

	bills, err := uc.repo.List(ctx, 0)
	if err != nil {
		return nil, "", fmt.Errorf("list bills for export: %w", err)
	}
	for i := range bills {
		bills[i] = billing.Reconcile(bills[i])
	}

	data, err := uc.exporter.Render(bills, format, fileType)
	if err != nil {
		return nil, "", fmt.Errorf("render export: %w", err)
	}

	name := "receipts"
	switch format {
	case domain.ExportXero:
		name = "receipts-xero"
	case domain.ExportQuickBooks:
		name = "receipts-quickbooks"
	}
	return data, fmt.Sprintf("%s.%s", name, fileType), nil
}
