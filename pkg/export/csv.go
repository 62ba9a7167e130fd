// Package export projects the resident dataset into the file formats the
// operator downloads: delimited text, a spreadsheet, and a SQLite snapshot.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// HeaderStyle selects the column names used in a delimited-text export.
type HeaderStyle string

const (
	// HeaderCanonical writes the canonical column names.
	HeaderCanonical HeaderStyle = "canonical"
	// HeaderSource writes the commercial system's original column names
	// where one exists, canonical names otherwise.
	HeaderSource HeaderStyle = "source"
)

// CSV serializes records as delimited text with the requested header style.
func CSV(records []models.Record, style HeaderStyle) ([]byte, error) {
	if style != HeaderCanonical && style != HeaderSource {
		return nil, fmt.Errorf("unknown header style %q", style)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := models.CanonicalColumns()
	if style == HeaderSource {
		for i, col := range header {
			if src, ok := models.SourceName(col); ok {
				header[i] = src
			}
		}
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		if err := w.Write(recordRow(rec)); err != nil {
			return nil, fmt.Errorf("failed to write row for client %d: %w", rec.ClientID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// recordRow renders a record as strings in canonical column order.
func recordRow(rec models.Record) []string {
	normalized := "0"
	if rec.Normalized {
		normalized = "1"
	}
	return []string{
		strconv.FormatInt(rec.ClientID, 10),
		strconv.FormatInt(rec.MeterID, 10),
		rec.CustomerName,
		rec.Address,
		normalized,
		rec.SignupDate,
		rec.InterventionDate,
		string(rec.Status),
	}
}
