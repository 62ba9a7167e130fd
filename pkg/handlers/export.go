package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/export"
	"github.com/epe-tools/desvinculados-engine/pkg/services"
)

// ExportHandler serves the resident dataset as downloadable files.
type ExportHandler struct {
	svc    services.SessionService
	logger *zap.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc services.SessionService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the export routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/export/csv", h.CSV)
	mux.HandleFunc("GET /api/export/xlsx", h.XLSX)
	mux.HandleFunc("GET /api/export/snapshot", h.Snapshot)
}

// CSV handles GET /api/export/csv.
// The names query parameter selects the header style: "canonical" (default)
// or "source" for the commercial system's original column names.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	style := export.HeaderCanonical
	if names := r.URL.Query().Get("names"); names != "" {
		style = export.HeaderStyle(names)
	}

	data, err := h.svc.ExportCSV(style)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_export", err.Error())
		return
	}
	h.serveDownload(w, data, "desvinculados.csv", "text/csv")
}

// XLSX handles GET /api/export/xlsx.
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportXLSX()
	if err != nil {
		h.logger.Error("spreadsheet export failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "export_error", err.Error())
		return
	}
	h.serveDownload(w, data, "desvinculados.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// Snapshot handles GET /api/export/snapshot.
// Serves the dataset as a zipped SQLite snapshot.
func (h *ExportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportSnapshotZip(r.Context())
	if err != nil {
		h.logger.Error("snapshot export failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "export_error", err.Error())
		return
	}
	h.serveDownload(w, data, export.SnapshotFileName+".zip", "application/zip")
}

func (h *ExportHandler) serveDownload(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write download", zap.String("filename", filename), zap.Error(err))
	}
}
