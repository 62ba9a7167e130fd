package adapters

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
	"github.com/epe-tools/desvinculados-engine/pkg/normalize"
)

// delimitedTextAdapter ingests comma-delimited exports from the commercial
// system. Rows whose dates or ids cannot be normalized are dropped; there is
// no structural precondition beyond a parsable header row.
type delimitedTextAdapter struct {
	logger *zap.Logger
}

func (a *delimitedTextAdapter) Kind() Kind { return KindDelimitedText }

func (a *delimitedTextAdapter) Ingest(ctx context.Context, r io.Reader) ([]models.Record, IngestReport, error) {
	var report IngestReport

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Exports occasionally carry ragged trailing columns.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("%w: unreadable header row: %v", apperrors.ErrFormatMismatch, err)
	}

	now := time.Now()
	var batch []models.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: malformed row %d: %v", apperrors.ErrFormatMismatch, report.RowsSeen+1, err)
		}
		report.RowsSeen++

		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				raw[name] = row[i]
			}
		}

		rec, err := buildRecord(renameColumns(raw), normalize.DateFail, now)
		if err != nil {
			report.RowsDropped++
			a.logger.Debug("dropping csv row", zap.Int("row", report.RowsSeen), zap.Error(err))
			continue
		}
		batch = append(batch, rec)
		report.RowsImported++
	}

	return batch, report, nil
}
