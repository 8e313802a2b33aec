package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vendor-registry-api/internal/auth"
	"vendor-registry-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-that-is-long-enough-for-testing"

func resetConfig() *config.Config {
	return &config.Config{
		EnableReset: true,
		JWTSecret:   testJWTSecret,
		JWTIssuer:   "vendor-registry-api",
		JWTAudience: "vendor-registry-api",
		JWTExpiry:   time.Hour,
	}
}

func operatorToken(t *testing.T, cfg *config.Config, roles ...string) string {
	t.Helper()
	m := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	token, err := m.GenerateToken("ops@example.com", roles)
	require.NoError(t, err)
	return token
}

func postReset(s *Server, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/reset", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestResetNotMountedByDefault(t *testing.T) {
	s := newTestServer(t, nil)
	w := postReset(s, "", `{"confirm":"vendordetails"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetVendors(t *testing.T) {
	cfg := resetConfig()
	s := newTestServer(t, cfg)
	for _, pan := range []string{"AAAAA0000A", "BBBBB1111B"} {
		require.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/vendors", vendorBody(pan, nil)).Code)
	}

	w := postReset(s, operatorToken(t, cfg, auth.RoleOperator), `{"confirm":"vendordetails"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Vendor table reset", decodeMap(t, w)["message"])
	assert.Empty(t, listPANs(t, s))

	// The table is usable again right away.
	assert.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/vendors", vendorBody("AAAAA0000A", nil)).Code)
}

func TestResetVendorsRejected(t *testing.T) {
	cfg := resetConfig()
	operator := operatorToken(t, cfg, auth.RoleOperator)
	viewer := operatorToken(t, cfg, "viewer")

	tests := []struct {
		name       string
		token      string
		body       string
		wantStatus int
	}{
		{name: "no token", body: `{"confirm":"vendordetails"}`, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", token: "a.b.c", body: `{"confirm":"vendordetails"}`, wantStatus: http.StatusUnauthorized},
		{name: "not operator", token: viewer, body: `{"confirm":"vendordetails"}`, wantStatus: http.StatusForbidden},
		{name: "missing confirm", token: operator, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "wrong confirm", token: operator, body: `{"confirm":"vendors"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid body", token: operator, body: `nope`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, cfg)
			require.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/vendors", vendorBody("AAAAA0000A", nil)).Code)

			w := postReset(s, tt.token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, "Confirmation required", decodeMap(t, w)["error"])
			}
			assert.Equal(t, []string{"AAAAA0000A"}, listPANs(t, s))
		})
	}
}

func TestImportEndpointMountedSeparately(t *testing.T) {
	cfg := resetConfig()
	cfg.EnableReset = false
	cfg.EnableImport = true
	s := newTestServer(t, cfg)

	w := postReset(s, operatorToken(t, cfg, auth.RoleOperator), `{"confirm":"vendordetails"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader(""))
	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+operatorToken(t, cfg, auth.RoleOperator))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "multipart/form-data")
}
