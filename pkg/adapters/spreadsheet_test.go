package adapters

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// buildSheet writes rows into an in-memory spreadsheet and returns its bytes.
func buildSheet(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func ingestSheet(t *testing.T, data []byte) ([]models.Record, IngestReport, error) {
	t.Helper()
	a, err := New(KindSpreadsheet, zap.NewNop())
	require.NoError(t, err)
	return a.Ingest(context.Background(), bytes.NewReader(data))
}

var sheetHeader = []any{"X", "NROCLI", "NUMERO_MEDIDOR", "FULLNAME", "DOMICILIO_COMERCIAL", "NORMALIZADO", "FECHA_ALTA"}

func TestSpreadsheetIngestDerivesStatusFromSymbol(t *testing.T) {
	data := buildSheet(t, [][]any{
		sheetHeader,
		{"+", "1001", "555", "JUAN PEREZ", "CALLE FALSA 123", "si", "3 oct. 2011"},
		{"?", "1002", "556", "ANA GOMEZ", "AV SIEMPREVIVA 742", "0", "2025-01-15"},
		{"x", "1003", "557", "PEDRO LOPEZ", "RUTA 11 KM 4", "1", "28 feb 1999"},
		{"", "1004", "558", "MARTA DIAZ", "BELGRANO 900", "no", "2020-06-01"},
	})

	batch, report, err := ingestSheet(t, data)
	require.NoError(t, err)
	require.Len(t, batch, 4)
	assert.Equal(t, IngestReport{RowsSeen: 4, RowsImported: 4}, report)

	assert.Equal(t, models.StatusLoaded, batch[0].Status)
	assert.Equal(t, models.StatusReview, batch[1].Status)
	assert.Equal(t, models.StatusOtherDistrict, batch[2].Status)
	assert.Equal(t, models.StatusPending, batch[3].Status)

	// Symbol column is consumed, not stored; the rest normalizes as usual.
	assert.Equal(t, "2011-10-03", batch[0].SignupDate)
	assert.True(t, batch[0].Normalized)
	assert.Equal(t, time.Now().Format(models.DateFormat), batch[0].InterventionDate)
}

func TestSpreadsheetWrongFirstColumnFailsWholeBatch(t *testing.T) {
	data := buildSheet(t, [][]any{
		{"NAME", "NROCLI", "NUMERO_MEDIDOR", "FULLNAME", "DOMICILIO_COMERCIAL", "NORMALIZADO", "FECHA_ALTA"},
		{"+", "1001", "555", "JUAN PEREZ", "CALLE FALSA 123", "si", "2020-01-01"},
	})

	batch, _, err := ingestSheet(t, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFormatMismatch)
	assert.Nil(t, batch, "a format error must not yield a partial batch")
}

func TestSpreadsheetFirstColumnNameIsCaseInsensitive(t *testing.T) {
	data := buildSheet(t, [][]any{
		{"x", "NROCLI", "NUMERO_MEDIDOR", "FULLNAME", "DOMICILIO_COMERCIAL", "NORMALIZADO", "FECHA_ALTA"},
		{"+", "1001", "555", "JUAN PEREZ", "CALLE FALSA 123", "si", "2020-01-01"},
	})

	batch, _, err := ingestSheet(t, data)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, models.StatusLoaded, batch[0].Status)
}

func TestSpreadsheetDropsBadRows(t *testing.T) {
	data := buildSheet(t, [][]any{
		sheetHeader,
		{"+", "1001", "555", "JUAN PEREZ", "CALLE FALSA 123", "si", "2020-01-01"},
		{"?", "notanumber", "556", "ANA GOMEZ", "AV SIEMPREVIVA 742", "0", "2020-01-01"},
		{"-", "1003", "557", "PEDRO LOPEZ", "RUTA 11 KM 4", "0", "99 ene 2020"},
	})

	batch, report, err := ingestSheet(t, data)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, IngestReport{RowsSeen: 3, RowsImported: 1, RowsDropped: 2}, report)
}

func TestSpreadsheetNotASpreadsheetIsFormatError(t *testing.T) {
	_, _, err := ingestSheet(t, []byte("this is not a zip archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFormatMismatch)
}
