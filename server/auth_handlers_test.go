package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/carhire-site/server"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func loginForm(email, password, next string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}, "next": {next}}
	req := httptest.NewRequest(http.MethodPost, server.RouteAdminLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func signedToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":   "someone",
		"email": adminEmail,
		"roles": []string{"site_admin"},
		"exp":   exp.Unix(),
		"jti":   "forged",
	})
	raw, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestLoginSubmissionHandler(t *testing.T) {
	t.Run("valid credentials set the token cookie", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(loginForm(adminEmail, adminPassword, server.RouteAdminTheming))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteAdminTheming, rec.Header().Get("Location"))

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "access_token" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, server.RouteAdmin, cookie.Path)
		require.InDelta(t, 1, testutil.ToFloat64(env.metrics.AdminLogins.WithLabelValues("password", "ok")), 0)

		user, err := env.users.GetByEmail(adminEmail)
		require.NoError(t, err)
		require.False(t, user.LastLogin.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(loginForm(adminEmail, "nope", ""))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), server.RouteAdminLogin+"?")
		require.Contains(t, rec.Header().Get("Location"), "error=")
		require.Empty(t, rec.Result().Cookies())
		require.InDelta(t, 1, testutil.ToFloat64(env.metrics.AdminLogins.WithLabelValues("password", "failed")), 0)
	})

	t.Run("unknown account", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(loginForm("nobody@carhire.test", adminPassword, ""))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "error=")
	})

	t.Run("blocked account", func(t *testing.T) {
		env := newTestEnv(t)
		user, err := env.users.GetByEmail(adminEmail)
		require.NoError(t, err)
		user.Blocked = true
		require.NoError(t, env.users.Upsert(user))

		rec := env.do(loginForm(adminEmail, adminPassword, ""))
		require.Contains(t, rec.Header().Get("Location"), "error=")
	})

	t.Run("next must stay inside the admin area", func(t *testing.T) {
		env := newTestEnv(t)
		for _, next := range []string{"https://evil.example/admin/x", "//evil.example/admin/", "/", "/adminx", ""} {
			rec := env.do(loginForm(adminEmail, adminPassword, next))
			require.Equal(t, server.RouteAdminDashboard, rec.Header().Get("Location"), next)
		}
	})

	t.Run("htmx requests get a redirect header", func(t *testing.T) {
		env := newTestEnv(t)
		req := loginForm(adminEmail, adminPassword, "")
		req.Header.Set("HX-Request", "true")
		rec := env.do(req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, server.RouteAdminDashboard, rec.Header().Get("HX-Redirect"))
	})
}

func TestRequireAdminToken(t *testing.T) {
	t.Run("no token redirects to login with next", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, server.RouteAdminTheming, nil))
		require.Equal(t, http.StatusSeeOther, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, server.RouteAdminLogin, location.Path)
		require.Equal(t, server.RouteAdminTheming, location.Query().Get("next"))
		require.Equal(t, "Session expired", location.Query().Get("error"))
		require.InDelta(t, 1, testutil.ToFloat64(env.metrics.TokenChecks.WithLabelValues("expired")), 0)
	})

	t.Run("valid token reaches the page", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
		req.AddCookie(env.login(t, adminEmail))
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Site Admin")
		require.Contains(t, rec.Body.String(), "Open page views")
	})

	t.Run("bearer header is accepted", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, adminEmail)
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		require.Equal(t, http.StatusOK, env.do(req).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signedToken(t, "another-secret-another-secret-00", time.Now().Add(time.Hour))})
		rec := env.do(req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "Invalid+session")
		require.InDelta(t, 1, testutil.ToFloat64(env.metrics.TokenChecks.WithLabelValues("invalid")), 0)
	})

	t.Run("token inside the expiry buffer counts as expired", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signedToken(t, testSecret, time.Now().Add(2*time.Second))})
		rec := env.do(req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "Session+expired")
	})

	t.Run("editor cannot open site admin pages", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, editorEmail)

		req := httptest.NewRequest(http.MethodGet, server.RouteAdminCookieConsents, nil)
		req.AddCookie(cookie)
		require.Equal(t, http.StatusForbidden, env.do(req).Code)

		req = httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
		req.AddCookie(cookie)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), server.RouteAdminCookieConsents)
	})
}

func TestLogoutHandler(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, adminEmail)

	req := httptest.NewRequest(http.MethodGet, server.RouteAdminLogout, nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteAdminLogin, rec.Header().Get("Location"))
	require.Equal(t, 1, env.revoked.Len())

	// The old token no longer works
	req = httptest.NewRequest(http.MethodGet, server.RouteAdminDashboard, nil)
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "Invalid+session")
}

func TestLoginPageUIHandler(t *testing.T) {
	t.Run("renders the form", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, server.RouteAdminLogin+"?error=Session+expired", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, `action="/admin/login"`)
		require.Contains(t, body, "Session expired")
		require.NotContains(t, body, server.RouteAdminSSO)
	})

	t.Run("signed in admins are sent on", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminLogin, nil)
		req.AddCookie(env.login(t, adminEmail))
		rec := env.do(req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteAdminDashboard, rec.Header().Get("Location"))
	})

	t.Run("single sign-on is off without an issuer", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, server.RouteAdminSSO, nil))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), server.RouteAdminLogin+"?error=")
	})

	t.Run("callback rejects a state without the flow cookie", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, server.RouteAdminCallback+"?state=abc&code=xyz", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
