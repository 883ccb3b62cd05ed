package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kito-labs/risiti/internal/core/domain"
)

// Exporter renders bills into accounting-software interchange files.
type Exporter struct {
	accounts AccountMap
}

func New(accounts AccountMap) *Exporter {
	return &Exporter{accounts: accounts}
}

func (e *Exporter) Render(
	bills []domain.Bill,
	format domain.ExportFormat,
	fileType domain.ExportFileType,
) ([]byte, error) {
	var rows [][]string
	var sheetName string

	switch format {
	case domain.ExportXero:
		rows = e.xeroRows(bills)
		sheetName = "Xero Bills"
	case domain.ExportQuickBooks:
		rows = e.quickBooksRows(bills)
		sheetName = "QuickBooks Bills"
	case domain.ExportGeneric:
		rows = e.genericRows(bills)
		sheetName = "Receipts"
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}

	switch fileType {
	case domain.ExportCSV:
		return renderCSV(rows)
	case domain.ExportXLSX:
		return renderXLSX(rows, sheetName)
	default:
		return nil, fmt.Errorf("unknown export file type: %q", fileType)
	}
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell coordinates: %w", err)
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("write sheet row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
