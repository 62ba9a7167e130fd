package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
	"github.com/epe-tools/desvinculados-engine/pkg/normalize"
)

// SnapshotTable is the fixed table name a snapshot file must contain.
const SnapshotTable = "desvinculados"

// snapshotAdapter ingests a SQLite snapshot produced by a previous session.
// The snapshot is assumed canonical except for a nullable intervention date,
// which is filled with today's date; any other unparseable date also falls
// back to today rather than dropping the row, since the row was already good
// enough to be exported once.
type snapshotAdapter struct {
	logger *zap.Logger
	table  string
}

func (a *snapshotAdapter) Kind() Kind { return KindSnapshot }

func (a *snapshotAdapter) Ingest(ctx context.Context, r io.Reader) ([]models.Record, IngestReport, error) {
	var report IngestReport

	// The sqlite driver needs a file on disk; stage the upload under a
	// unique name and clean it up when done.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read snapshot upload: %w", err)
	}
	path := filepath.Join(os.TempDir(), uuid.NewString()+".db")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, report, fmt.Errorf("failed to stage snapshot file: %w", err)
	}
	defer os.Remove(path)

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, report, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", a.table))
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, report, fmt.Errorf("%w: %q", apperrors.ErrTableMissing, a.table)
		}
		return nil, report, fmt.Errorf("%w: snapshot is not readable: %v", apperrors.ErrFormatMismatch, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, report, fmt.Errorf("failed to read snapshot columns: %w", err)
	}

	now := time.Now()
	var batch []models.Record
	for rows.Next() {
		report.RowsSeen++

		values := make([]sql.NullString, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, report, fmt.Errorf("failed to scan snapshot row %d: %w", report.RowsSeen, err)
		}

		raw := make(map[string]string, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				raw[col] = values[i].String
			}
		}

		rec, err := buildRecord(renameColumns(raw), normalize.DateFallbackToday, now)
		if err != nil {
			report.RowsDropped++
			a.logger.Debug("dropping snapshot row", zap.Int("row", report.RowsSeen), zap.Error(err))
			continue
		}
		batch = append(batch, rec)
		report.RowsImported++
	}
	if err := rows.Err(); err != nil {
		return nil, report, fmt.Errorf("failed while reading snapshot rows: %w", err)
	}

	return batch, report, nil
}
