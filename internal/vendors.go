package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"vendor-registry-api/internal/models"
	"vendor-registry-api/internal/store"

	"github.com/go-chi/chi/v5"
)

const (
	msgNotFound      = "Vendor not found"
	msgAdded         = "Vendor added successfully"
	msgUpdated       = "Vendor updated successfully"
	msgDeleted       = "Vendor deleted successfully"
	msgMissingFields = "Missing required fields"
	msgInvalidJSON   = "Invalid JSON"
	msgInvalidValue  = "Invalid field value"

	maxPayloadBytes = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := s.Store.List(r.Context())
	s.Metrics.ObserveStore("list", err)
	if err != nil {
		s.storeFailure(w, r, "list vendors", err)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := s.Store.Get(r.Context(), id)
	s.Metrics.ObserveStore("get", err)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{msgNotFound})
		return
	}
	if err != nil {
		s.storeFailure(w, r, "get vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) createVendor(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	if missing := models.MissingRequired(payload); len(missing) > 0 {
		s.Logger.Debug("create rejected", "request_id", requestIDFromContext(r.Context()), "missing", missing)
		writeJSON(w, http.StatusBadRequest, errorResponse{msgMissingFields})
		return
	}
	v, err := models.VendorFromPayload(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgInvalidValue})
		return
	}

	err = s.Store.Insert(r.Context(), v)
	s.Metrics.ObserveStore("insert", err)
	if err != nil {
		s.storeFailure(w, r, "insert vendor", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{msgAdded})
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	patch, err := models.PatchFromPayload(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgInvalidValue})
		return
	}

	err = s.Store.Update(r.Context(), id, patch)
	s.Metrics.ObserveStore("update", err)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{msgNotFound})
		return
	}
	if err != nil {
		s.storeFailure(w, r, "update vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{msgUpdated})
}

func (s *Server) deleteVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.Store.Delete(r.Context(), id)
	s.Metrics.ObserveStore("delete", err)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{msgNotFound})
		return
	}
	if err != nil {
		s.storeFailure(w, r, "delete vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{msgDeleted})
}

// decodePayload reads a flat JSON object. Numbers are kept as json.Number so
// they are stored with their original text.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgInvalidJSON})
		return nil, false
	}
	return payload, true
}

// storeFailure logs the backend error and answers with an opaque code so
// driver text never reaches the caller.
func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := storeErrorCode(err)
	s.Logger.Error(op+" failed",
		"request_id", requestIDFromContext(r.Context()),
		"code", code,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{code})
}

func storeErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return "DUPLICATE_KEY"
	case errors.Is(err, store.ErrConstraintViolation):
		return "CONSTRAINT_VIOLATION"
	default:
		return "STORE_FAILURE"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
