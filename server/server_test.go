package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/carhire-site/server"
	"github.com/stretchr/testify/require"
)

func TestIndexHandler(t *testing.T) {
	env := newTestEnv(t, withEvents(saleEvent()))
	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))

	body := rec.Body.String()
	require.Contains(t, body, `id="cookie-consent"`)
	require.Contains(t, body, `data-stream="/consent/stream?view=`)
	require.Contains(t, body, " hidden>")
	require.Contains(t, body, "theme-spring")

	t.Run("unknown pages are not found", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("www is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "www.carhire.test"
		rec := env.do(req)
		require.Equal(t, http.StatusMovedPermanently, rec.Code)
		require.Equal(t, "https://carhire.test/", rec.Header().Get("Location"))
	})
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])

	env.storage.SetUnavailable(true)
	rec = env.do(httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticFiles(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/static/js/consent.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "EventSource")

	req := httptest.NewRequest(http.MethodGet, "/static/css/site.css", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestNewRequiresRepos(t *testing.T) {
	_, err := server.New(testConfig{}, server.Repos{}, nil)
	require.Error(t, err)
}
