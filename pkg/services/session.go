package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/adapters"
	"github.com/epe-tools/desvinculados-engine/pkg/dataset"
	"github.com/epe-tools/desvinculados-engine/pkg/export"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// SessionService owns the resident dataset for the operator's session and is
// the only component allowed to mutate it.
type SessionService interface {
	// LoadSnapshot replaces the resident dataset with the contents of an
	// uploaded snapshot file.
	LoadSnapshot(ctx context.Context, r io.Reader) (adapters.IngestReport, error)

	// Import ingests an uploaded file of the given kind and upsert-merges
	// the resulting batch into the resident dataset.
	Import(ctx context.Context, kind adapters.Kind, r io.Reader) (adapters.IngestReport, error)

	// Reconcile commits an edited partial view back into the dataset.
	Reconcile(visibleKeys []int64, edited []models.Record) error

	// List returns the resident records, optionally filtered by status.
	List(status *models.Status) []models.Record

	// Count returns the resident record count.
	Count() int

	ExportCSV(style export.HeaderStyle) ([]byte, error)
	ExportXLSX() ([]byte, error)
	ExportSnapshotZip(ctx context.Context) ([]byte, error)
}

// sessionService implements SessionService. The core engine assumes one
// pending operation at a time; the HTTP shell cannot guarantee that, so the
// dataset is guarded here.
type sessionService struct {
	mu     sync.Mutex
	data   *dataset.Dataset
	logger *zap.Logger
}

// NewSessionService creates a session service with an empty resident dataset.
func NewSessionService(logger *zap.Logger) SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{
		data:   dataset.New(),
		logger: logger,
	}
}

func (s *sessionService) LoadSnapshot(ctx context.Context, r io.Reader) (adapters.IngestReport, error) {
	adapter, err := adapters.New(adapters.KindSnapshot, s.logger)
	if err != nil {
		return adapters.IngestReport{}, err
	}
	batch, report, err := adapter.Ingest(ctx, r)
	if err != nil {
		return report, fmt.Errorf("snapshot load failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.data.Replace(batch); err != nil {
		return report, fmt.Errorf("snapshot load failed: %w", err)
	}
	s.logger.Info("snapshot loaded",
		zap.Int("rows_imported", report.RowsImported),
		zap.Int("rows_dropped", report.RowsDropped))
	return report, nil
}

func (s *sessionService) Import(ctx context.Context, kind adapters.Kind, r io.Reader) (adapters.IngestReport, error) {
	adapter, err := adapters.New(kind, s.logger)
	if err != nil {
		return adapters.IngestReport{}, err
	}
	batch, report, err := adapter.Ingest(ctx, r)
	if err != nil {
		return report, fmt.Errorf("import failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.data.Upsert(batch); err != nil {
		return report, fmt.Errorf("merge failed: %w", err)
	}
	s.logger.Info("batch merged",
		zap.String("kind", string(kind)),
		zap.Int("rows_imported", report.RowsImported),
		zap.Int("rows_dropped", report.RowsDropped),
		zap.Int("resident_total", s.data.Len()))
	return report, nil
}

func (s *sessionService) Reconcile(visibleKeys []int64, edited []models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.data.Reconcile(visibleKeys, edited); err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	s.logger.Info("edits reconciled",
		zap.Int("visible_keys", len(visibleKeys)),
		zap.Int("edited_rows", len(edited)),
		zap.Int("resident_total", s.data.Len()))
	return nil
}

func (s *sessionService) List(status *models.Status) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == nil {
		return s.data.Records()
	}
	return s.data.FilterStatus(*status)
}

func (s *sessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Len()
}

func (s *sessionService) ExportCSV(style export.HeaderStyle) ([]byte, error) {
	s.mu.Lock()
	records := s.data.Records()
	s.mu.Unlock()
	return export.CSV(records, style)
}

func (s *sessionService) ExportXLSX() ([]byte, error) {
	s.mu.Lock()
	records := s.data.Records()
	s.mu.Unlock()
	return export.XLSX(records)
}

func (s *sessionService) ExportSnapshotZip(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	records := s.data.Records()
	s.mu.Unlock()
	return export.SnapshotZip(ctx, records)
}

// Ensure sessionService implements SessionService at compile time.
var _ SessionService = (*sessionService)(nil)
