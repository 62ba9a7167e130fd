package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/adapters"
	"github.com/epe-tools/desvinculados-engine/pkg/config"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
	"github.com/epe-tools/desvinculados-engine/pkg/services"
)

// DatasetHandler exposes the resident dataset: snapshot loads, file imports,
// the grid listing, and edit reconciliation.
type DatasetHandler struct {
	svc    services.SessionService
	cfg    *config.Config
	logger *zap.Logger
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(svc services.SessionService, cfg *config.Config, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the dataset routes on the given mux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/dataset/snapshot", h.LoadSnapshot)
	mux.HandleFunc("POST /api/dataset/import", h.Import)
	mux.HandleFunc("GET /api/dataset", h.List)
	mux.HandleFunc("POST /api/dataset/reconcile", h.Reconcile)
}

// importResponse is the user-facing summary of one ingestion.
type importResponse struct {
	Report        adapters.IngestReport `json:"report"`
	ResidentTotal int                   `json:"resident_total"`
}

// LoadSnapshot handles POST /api/dataset/snapshot.
// Replaces the resident dataset with an uploaded snapshot file.
func (h *DatasetHandler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	file, _, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.svc.LoadSnapshot(r.Context(), file)
	if err != nil {
		h.logger.Warn("snapshot load rejected", zap.Error(err))
		_ = writeEngineError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, importResponse{Report: report, ResidentTotal: h.svc.Count()})
}

// Import handles POST /api/dataset/import.
// Ingests a delimited-text or spreadsheet upload and merges it into the
// resident dataset. The source kind comes from the "kind" form field or,
// absent that, the uploaded file's extension.
func (h *DatasetHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, filename, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	kind := adapters.Kind(r.FormValue("kind"))
	if kind == "" {
		var err error
		kind, err = adapters.KindForFilename(filename)
		if err != nil {
			_ = writeEngineError(w, err)
			return
		}
	}
	if kind == adapters.KindSnapshot {
		_ = ErrorResponse(w, http.StatusBadRequest, "wrong_endpoint",
			"snapshot files replace the dataset; use /api/dataset/snapshot")
		return
	}

	report, err := h.svc.Import(r.Context(), kind, file)
	if err != nil {
		h.logger.Warn("import rejected", zap.String("kind", string(kind)), zap.Error(err))
		_ = writeEngineError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, importResponse{Report: report, ResidentTotal: h.svc.Count()})
}

// List handles GET /api/dataset.
// Returns the resident records, optionally filtered by the status query
// parameter (stored status values, e.g. "pendiente").
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_status", "unknown status "+raw)
			return
		}
		filter = &status
	}

	records := h.svc.List(filter)
	if records == nil {
		records = []models.Record{}
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"total":   h.svc.Count(),
		"records": records,
	})
}

// reconcileRequest is the edited partial view the grid sends on commit.
type reconcileRequest struct {
	VisibleKeys []int64         `json:"visible_keys"`
	Records     []models.Record `json:"records"`
}

// Reconcile handles POST /api/dataset/reconcile.
// Commits an edited subset of the grid back into the full dataset.
func (h *DatasetHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}

	if err := h.svc.Reconcile(req.VisibleKeys, req.Records); err != nil {
		h.logger.Warn("reconcile rejected", zap.Error(err))
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "reconcile_error", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int{"resident_total": h.svc.Count()})
}

// uploadedFile extracts the "file" part of a multipart upload, bounded by the
// configured size cap. On failure it writes the error response itself.
func (h *DatasetHandler) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "failed to parse multipart upload")
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_file", "file part not found in request")
		return nil, "", false
	}
	return file, header.Filename, true
}
