package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		page    int
		perPage int
		offset  int
	}{
		{"defaults", "", 1, defaultPerPage, 0},
		{"explicit page", "page=3&per_page=20", 3, 20, 40},
		{"per_page capped", "per_page=9999", 1, maxPerPage, 0},
		{"garbage ignored", "page=abc&per_page=-5", 1, defaultPerPage, 0},
		{"zero page ignored", "page=0", 1, defaultPerPage, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/ratings?"+tt.query, nil)
			p := parsePagination(r)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestBearerAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := BearerAuth("secret-token")(next)

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
		r.Header.Set("Authorization", "Bearer secret-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code, "A valid token passes through")
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing bearer token")
	})

	t.Run("wrong token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
		r.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
		r.Header.Set("Authorization", "Basic secret-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleImportStatus_WithoutStateTracking(t *testing.T) {
	s := &Server{}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/imports/status", nil)
	w := httptest.NewRecorder()

	s.handleImportStatus(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "No Redis means status is unavailable, not empty")
	assert.Contains(t, w.Body.String(), "import-state tracking unavailable")
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"date must be YYYY-MM-DD"}`, w.Body.String())
}
