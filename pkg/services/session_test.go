package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/adapters"
	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/export"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

const importCSV = "NROCLI,NUMERO_MEDIDOR,FULLNAME,DOMICILIO_COMERCIAL,NORMALIZADO,FECHA_ALTA\n" +
	"1001,555,JUAN PEREZ,CALLE FALSA 123,si,3 oct. 2011\n" +
	"1002,556,ANA GOMEZ,AV SIEMPREVIVA 742,0,2025-01-15\n"

func newTestSession(t *testing.T) SessionService {
	t.Helper()
	return NewSessionService(zap.NewNop())
}

func TestSessionImportAndList(t *testing.T) {
	svc := newTestSession(t)

	report, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsImported)
	assert.Equal(t, 2, svc.Count())

	all := svc.List(nil)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1001), all[0].ClientID)

	pending := models.StatusPending
	assert.Len(t, svc.List(&pending), 2)

	loaded := models.StatusLoaded
	assert.Empty(t, svc.List(&loaded))
}

func TestSessionImportTwiceIsIdempotent(t *testing.T) {
	svc := newTestSession(t)

	_, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)
	first := svc.List(nil)

	_, err = svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, first, svc.List(nil))
}

func TestSessionFailedImportLeavesDatasetUnchanged(t *testing.T) {
	svc := newTestSession(t)
	_, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)
	before := svc.List(nil)

	// A spreadsheet whose first column is not "X" is rejected wholesale.
	_, err = svc.Import(context.Background(), adapters.KindSpreadsheet, strings.NewReader("not a spreadsheet"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFormatMismatch)
	assert.Equal(t, before, svc.List(nil))
}

func TestSessionReconcile(t *testing.T) {
	svc := newTestSession(t)
	_, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)

	// The user saw both rows, edited 1001, deleted 1002, added 2000.
	edited := svc.List(nil)[0]
	edited.Status = models.StatusLoaded
	added := models.Record{
		ClientID: 2000, MeterID: 700, CustomerName: "NUEVO CLIENTE",
		Address: "SAN MARTIN 1500", SignupDate: "2024-03-01",
		InterventionDate: "2025-06-10", Status: models.StatusPending,
	}

	err = svc.Reconcile([]int64{1001, 1002}, []models.Record{edited, added})
	require.NoError(t, err)

	all := svc.List(nil)
	require.Len(t, all, 2)
	assert.Equal(t, models.StatusLoaded, all[0].Status)
	assert.Equal(t, int64(2000), all[1].ClientID)
}

func TestSessionSnapshotLoadReplacesDataset(t *testing.T) {
	svc := newTestSession(t)
	_, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)

	// Build a one-record snapshot from a second session and load it.
	other := newTestSession(t)
	_, err = other.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(
		"NROCLI,NUMERO_MEDIDOR,FULLNAME,DOMICILIO_COMERCIAL,NORMALIZADO,FECHA_ALTA\n"+
			"9001,900,OTRO CLIENTE,OTRA CALLE 1,1,2020-01-01\n"))
	require.NoError(t, err)

	snap, err := export.Snapshot(context.Background(), other.List(nil))
	require.NoError(t, err)

	report, err := svc.LoadSnapshot(context.Background(), bytes.NewReader(snap))
	require.NoError(t, err)
	assert.Equal(t, 1, report.RowsImported)

	all := svc.List(nil)
	require.Len(t, all, 1)
	assert.Equal(t, int64(9001), all[0].ClientID)
}

func TestSessionExports(t *testing.T) {
	svc := newTestSession(t)
	_, err := svc.Import(context.Background(), adapters.KindDelimitedText, strings.NewReader(importCSV))
	require.NoError(t, err)

	csvData, err := svc.ExportCSV(export.HeaderSource)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "NROCLI,"))

	xlsxData, err := svc.ExportXLSX()
	require.NoError(t, err)
	assert.NotEmpty(t, xlsxData)

	zipData, err := svc.ExportSnapshotZip(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(zipData, []byte("PK")), "zip container expected")
}

func TestSessionImportRejectsUnknownKind(t *testing.T) {
	svc := newTestSession(t)
	_, err := svc.Import(context.Background(), adapters.Kind("parquet"), strings.NewReader(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedKind)
	assert.Zero(t, svc.Count())
}
