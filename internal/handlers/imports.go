package handlers

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vendor-registry-api/internal/auth"
	"vendor-registry-api/internal/store"
	"vendor-registry-api/pkg/importer"
)

// ImportsHandler handles spreadsheet vendor uploads
type ImportsHandler struct {
	Store      store.VendorStore
	Logger     *slog.Logger
	MaxBytes   int64
	DefaultMap string
}

func NewImportsHandler(st store.VendorStore, logger *slog.Logger) *ImportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportsHandler{
		Store:    st,
		Logger:   logger,
		MaxBytes: 20 << 20, // 20 MB
	}
}

// UploadExcel imports vendors from a multipart "file" field. Optional form
// fields: dry_run, sheet, max_errors. The alias mapping is fixed server side.
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		http.Error(w, "content-type must be multipart/form-data", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	dryRun := r.FormValue("dry_run") == "true"
	maxErrors := 50
	if v := r.FormValue("max_errors"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxErrors = n
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		http.Error(w, "only .xlsx files are accepted", http.StatusBadRequest)
		return
	}

	operator := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		operator = claims.Subject
	}

	sum, impErr := importer.ImportVendors(r.Context(), h.Store, file, importer.Options{
		Sheet:       r.FormValue("sheet"),
		MappingPath: h.DefaultMap,
		DryRun:      dryRun,
		MaxErrors:   maxErrors,
	})
	h.Logger.Info("vendor import",
		"operator", operator,
		"file", header.Filename,
		"dry_run", dryRun,
		"inserted", sum.Inserted,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
	)
	if impErr != nil {
		h.Logger.Warn("vendor import failed", "operator", operator, "error", impErr)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "IMPORT_FAILED",
			"details": impErr.Error(),
			"data":    sum, // partial counts up to the failure
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": sum,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
