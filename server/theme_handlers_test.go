package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/carhire-site/server"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/stretchr/testify/require"
)

func saleEvent() theming.Event {
	return theming.Event{
		Name:      "Spring Sale",
		Slug:      "spring-sale",
		StartDate: today().AddDate(0, 0, -1),
		EndDate:   today().AddDate(0, 0, 1),
		ThemeKey:  "spring",
		Priority:  10,
		Active:    true,
	}
}

func activeTheme(t *testing.T, env *testEnv, cookies ...*http.Cookie) theming.Active {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, server.RouteAPIActiveTheme, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var active theming.Active
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	return active
}

func TestActiveThemeHandler(t *testing.T) {
	t.Run("default without events", func(t *testing.T) {
		env := newTestEnv(t)
		active := activeTheme(t, env)
		require.Equal(t, theming.DefaultKey, active.ThemeKey)
		require.Nil(t, active.Event)
	})

	t.Run("running event", func(t *testing.T) {
		env := newTestEnv(t, withEvents(saleEvent()))
		active := activeTheme(t, env)
		require.Equal(t, "spring", active.ThemeKey)
		require.Equal(t, "Spring", active.Theme.Name)
		require.NotNil(t, active.Event)
		require.Equal(t, "spring-sale", active.Event.Slug)
	})

	t.Run("theming disabled", func(t *testing.T) {
		env := newTestEnv(t, withEvents(saleEvent()), withThemingDisabled())
		require.Equal(t, theming.DefaultKey, activeTheme(t, env).ThemeKey)
	})

	t.Run("preview cookie wins", func(t *testing.T) {
		env := newTestEnv(t, withEvents(saleEvent()))
		active := activeTheme(t, env, &http.Cookie{Name: "preview_theme", Value: "halloween"})
		require.Equal(t, "halloween", active.ThemeKey)
		require.True(t, active.Preview)
	})
}

func TestThemePreviewHandler(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t, adminEmail)

	preview := func(key string) *http.Cookie {
		form := url.Values{"theme": {key}}
		req := httptest.NewRequest(http.MethodPost, server.RouteAdminThemePreview, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(session)
		rec := env.do(req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteAdminTheming, rec.Header().Get("Location"))
		for _, c := range rec.Result().Cookies() {
			if c.Name == "preview_theme" {
				return c
			}
		}
		t.Fatal("no preview cookie")
		return nil
	}

	cookie := preview("christmas")
	require.Equal(t, "christmas", cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.Positive(t, cookie.MaxAge)

	cleared := preview("")
	require.Negative(t, cleared.MaxAge)

	unknown := preview("not-a-theme")
	require.Negative(t, unknown.MaxAge)

	t.Run("requires a signed in admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteAdminThemePreview, strings.NewReader("theme=christmas"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := env.do(req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), server.RouteAdminLogin)
	})
}

func TestAdminThemingHandler(t *testing.T) {
	env := newTestEnv(t, withEvents(saleEvent()))
	req := httptest.NewRequest(http.MethodGet, server.RouteAdminTheming, nil)
	req.AddCookie(env.login(t, adminEmail))
	req.AddCookie(&http.Cookie{Name: "preview_theme", Value: "winter"})
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Spring Sale")
	require.Contains(t, body, `<option value="winter" selected>`)
	require.Contains(t, body, "(preview)")
	require.Contains(t, body, "<title>Theming | Car Hire</title>")
}

func TestAdminCookieConsentsHandler(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t, adminEmail)

	for i := 0; i < 30; i++ {
		req := httptest.NewRequest(http.MethodPost, server.RouteAPIConsentSubmit, strings.NewReader(`{"marketing_cookies":true}`))
		req.AddCookie(visitorCookie())
		require.Equal(t, http.StatusOK, env.do(req).Code)
	}

	page := func(query string) string {
		req := httptest.NewRequest(http.MethodGet, server.RouteAdminCookieConsents+query, nil)
		req.AddCookie(session)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	first := page("")
	require.Equal(t, 25, strings.Count(first, "<code>"))
	require.Contains(t, first, `href="?offset=25"`)
	require.NotContains(t, first, "Previous")

	second := page("?offset=25")
	require.Equal(t, 5, strings.Count(second, "<code>"))
	require.Contains(t, second, `href="?offset=0"`)
	require.NotContains(t, second, ">Next<")
}
