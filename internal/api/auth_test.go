package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bjorkvang/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authFixture(rps float64) *HTTPAuth {
	return NewHTTPAuth(config.AuthConfig{
		Enabled:      true,
		HeaderAPIKey: "x-api-key",
		APIKeys: []config.ClientKey{
			{Key: "admin-key", Name: "admin", Permissions: []string{"read:bookings", "export:bookings"}},
			{Key: "widget-key", Name: "widget", Permissions: []string{"read:bookings"}},
			{Key: "open-key", Name: "legacy"},
		},
	}, config.RateLimitConfig{RPS: rps, Burst: 2})
}

func doAuthed(t *testing.T, auth *HTTPAuth, path, key string) int {
	t.Helper()
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec.Code
}

func TestAuthPermissions(t *testing.T) {
	auth := authFixture(0)

	assert.Equal(t, http.StatusUnauthorized, doAuthed(t, auth, "/api/booking/admin", ""))
	assert.Equal(t, http.StatusUnauthorized, doAuthed(t, auth, "/api/booking/admin", "bogus"))

	assert.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin", "admin-key"))
	assert.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin/export", "admin-key"))

	// The widget key reads but cannot export.
	assert.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin", "widget-key"))
	assert.Equal(t, http.StatusForbidden, doAuthed(t, auth, "/api/booking/admin/export", "widget-key"))

	// A key without a permission list gets everything.
	assert.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin/export", "open-key"))
}

func TestAuthRateLimit(t *testing.T) {
	auth := authFixture(1)

	// Burst of 2, then the limiter kicks in.
	require.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin", "admin-key"))
	require.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin", "admin-key"))
	assert.Equal(t, http.StatusTooManyRequests, doAuthed(t, auth, "/api/booking/admin", "admin-key"))

	// Another key is unaffected.
	assert.Equal(t, http.StatusOK, doAuthed(t, auth, "/api/booking/admin", "widget-key"))
}
