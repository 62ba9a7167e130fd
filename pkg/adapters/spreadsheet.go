package adapters

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
	"github.com/epe-tools/desvinculados-engine/pkg/normalize"
)

// symbolColumnName is the mandated logical name of the spreadsheet's first
// column, the one carrying the status code. Compared case-insensitively.
const symbolColumnName = "x"

// spreadsheetAdapter ingests the field crews' spreadsheet. The first column
// must be named "X" and carries a per-row status symbol; the rest of the
// sheet follows the commercial export's column names.
type spreadsheetAdapter struct {
	logger *zap.Logger
}

func (a *spreadsheetAdapter) Kind() Kind { return KindSpreadsheet }

func (a *spreadsheetAdapter) Ingest(ctx context.Context, r io.Reader) ([]models.Record, IngestReport, error) {
	var report IngestReport

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, report, fmt.Errorf("%w: not a readable spreadsheet: %v", apperrors.ErrFormatMismatch, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, report, fmt.Errorf("%w: spreadsheet has no sheets", apperrors.ErrFormatMismatch)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("%w: sheet %q has no header row", apperrors.ErrFormatMismatch, sheet)
	}

	header := rows[0]
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(header[0]), symbolColumnName) {
		got := ""
		if len(header) > 0 {
			got = header[0]
		}
		return nil, report, fmt.Errorf("%w: first column must be named %q, got %q", apperrors.ErrFormatMismatch, "X", got)
	}

	now := time.Now()
	var batch []models.Record
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		row := rows[rowIdx]
		report.RowsSeen++

		symbol := ""
		if len(row) > 0 {
			symbol = row[0]
		}

		// The symbol column feeds the status and is then dropped; the
		// remaining columns go through the standard rename.
		raw := make(map[string]string, len(header))
		for i := 1; i < len(header); i++ {
			if i < len(row) {
				raw[header[i]] = row[i]
			}
		}
		canonical := renameColumns(raw)
		canonical[models.ColStatus] = string(normalize.StatusFromSymbol(symbol))

		rec, err := buildRecord(canonical, normalize.DateFail, now)
		if err != nil {
			report.RowsDropped++
			a.logger.Debug("dropping spreadsheet row", zap.Int("row", rowIdx+1), zap.Error(err))
			continue
		}
		batch = append(batch, rec)
		report.RowsImported++
	}

	return batch, report, nil
}
