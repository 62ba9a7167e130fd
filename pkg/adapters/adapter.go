package adapters

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// Kind identifies an ingestible source format.
type Kind string

const (
	// KindDelimitedText is a comma-delimited export from the commercial system.
	KindDelimitedText Kind = "csv"
	// KindSpreadsheet is the field crews' spreadsheet with the symbol column.
	KindSpreadsheet Kind = "xlsx"
	// KindSnapshot is a SQLite file produced by a previous session's export.
	KindSnapshot Kind = "snapshot"
)

// IngestReport summarizes per-row outcomes of one ingestion for the
// user-facing import summary. Rows dropped here are row-level failures;
// structural failures abort the batch and never produce a report.
type IngestReport struct {
	RowsSeen     int `json:"rows_seen"`
	RowsImported int `json:"rows_imported"`
	RowsDropped  int `json:"rows_dropped"`
}

// Adapter parses one uploaded file into a normalized batch of canonical
// records. A returned error means the whole batch failed and nothing should
// be merged; row-level problems are reflected in the report instead.
type Adapter interface {
	Kind() Kind
	Ingest(ctx context.Context, r io.Reader) ([]models.Record, IngestReport, error)
}

// New returns the adapter for the given source kind.
func New(kind Kind, logger *zap.Logger) (Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch kind {
	case KindDelimitedText:
		return &delimitedTextAdapter{logger: logger}, nil
	case KindSpreadsheet:
		return &spreadsheetAdapter{logger: logger}, nil
	case KindSnapshot:
		return &snapshotAdapter{logger: logger, table: SnapshotTable}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedKind, kind)
	}
}

// KindForFilename resolves the source kind from a file-extension hint. The
// engine never sniffs bytes; the extension is the caller's declaration.
func KindForFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return KindDelimitedText, nil
	case ".xlsx", ".xls":
		return KindSpreadsheet, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSnapshot, nil
	default:
		return "", fmt.Errorf("%w: extension of %q", apperrors.ErrUnsupportedKind, name)
	}
}
