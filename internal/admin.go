package internal

import (
	"encoding/json"
	"net/http"

	"vendor-registry-api/internal/auth"
	"vendor-registry-api/internal/models"
)

type resetRequest struct {
	Confirm string `json:"confirm"`
}

// resetVendors drops and recreates the vendor table. The body must name the
// table being destroyed.
func (s *Server) resetVendors(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm != models.TableName {
		writeJSON(w, http.StatusBadRequest, errorResponse{"Confirmation required"})
		return
	}

	operator := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		operator = claims.Subject
	}

	err := s.Store.Reset(r.Context())
	s.Metrics.ObserveStore("reset", err)
	if err != nil {
		s.storeFailure(w, r, "reset vendors", err)
		return
	}

	s.Logger.Warn("vendor table reset",
		"request_id", requestIDFromContext(r.Context()),
		"operator", operator,
	)
	writeJSON(w, http.StatusOK, messageResponse{"Vendor table reset"})
}
