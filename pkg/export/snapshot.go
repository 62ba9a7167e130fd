package export

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/epe-tools/desvinculados-engine/pkg/adapters"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// SnapshotFileName is the download name of an exported snapshot.
const SnapshotFileName = "desvinculados_actualizado.db"

const createSnapshotTable = `
CREATE TABLE ` + adapters.SnapshotTable + ` (
	nro_cli            INTEGER PRIMARY KEY,
	nro_med            INTEGER NOT NULL,
	usuario            TEXT NOT NULL,
	domicilio          TEXT NOT NULL,
	normalizado        INTEGER NOT NULL,
	fecha_alta         TEXT NOT NULL,
	fecha_intervencion TEXT,
	estado             TEXT NOT NULL
)`

const insertSnapshotRow = `
INSERT INTO ` + adapters.SnapshotTable + `
	(nro_cli, nro_med, usuario, domicilio, normalizado, fecha_alta, fecha_intervencion, estado)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Snapshot serializes records into a SQLite file holding the one
// desvinculados table, and returns the file's bytes.
func Snapshot(ctx context.Context, records []models.Record) ([]byte, error) {
	path := filepath.Join(os.TempDir(), uuid.NewString()+".db")
	defer os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := writeSnapshot(ctx, db, records); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize snapshot: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

func writeSnapshot(ctx context.Context, db *sql.DB, records []models.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on defer is best-effort

	if _, err := tx.ExecContext(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSnapshotRow)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		normalized := 0
		if rec.Normalized {
			normalized = 1
		}
		_, err := stmt.ExecContext(ctx,
			rec.ClientID, rec.MeterID, rec.CustomerName, rec.Address,
			normalized, rec.SignupDate, rec.InterventionDate, string(rec.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for client %d: %w", rec.ClientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// SnapshotZip wraps a snapshot in a zip container, matching the download
// format earlier sessions produced.
func SnapshotZip(ctx context.Context, records []models.Record) ([]byte, error) {
	data, err := Snapshot(ctx, records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create(SnapshotFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry: %w", err)
	}
	if _, err := entry.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
