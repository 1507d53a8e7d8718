package server

import (
	"net/http"

	"github.com/jrsteele09/carhire-site/theming"
	"github.com/rs/zerolog/log"
)

// previewCookieMaxAge keeps a theme preview for the rest of the admin's working day
const previewCookieMaxAge = 8 * 60 * 60

// ActiveThemeHandler returns the theme resolved for this request
func (s *Server) ActiveThemeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, theming.FromContext(r.Context()))
	}
}

// ThemingPageData drives the admin theming page
type ThemingPageData struct {
	Active      theming.Active
	Enabled     bool
	PreviewPath string
	PreviewKey  string
	Themes      []theming.Theme
	Events      []theming.Event
}

// AdminThemingHandler shows the active theme, the event calendar and the preview picker
func (s *Server) AdminThemingHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_theming_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.repos.ThemeEvents.List(r.Context())
		if err != nil {
			log.Err(err).Msg("Failed to list theme events")
		}

		data := ThemingPageData{
			Active:      theming.FromContext(r.Context()),
			Enabled:     s.themes.Resolver().Enabled(),
			PreviewPath: RouteAdminThemePreview,
			Events:      events,
		}
		if cookie, err := r.Cookie(cookiePreviewTheme); err == nil {
			data.PreviewKey = cookie.Value
		}
		for _, key := range theming.Keys {
			data.Themes = append(data.Themes, theming.Predefined[key])
		}
		s.renderAdminPage(w, r, tmpl, data)
	}
}

// ThemePreviewHandler sets or clears the preview cookie. The preview applies site-wide
// for this browser only.
func (s *Server) ThemePreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		key := r.FormValue("theme")
		cookie := &http.Cookie{
			Name:     cookiePreviewTheme,
			Path:     "/",
			HttpOnly: true,
			Secure:   getScheme(r) == "https",
			SameSite: http.SameSiteLaxMode,
		}
		if _, ok := theming.Predefined[key]; ok {
			cookie.Value = key
			cookie.MaxAge = previewCookieMaxAge
		} else {
			cookie.MaxAge = -1
		}
		http.SetCookie(w, cookie)
		redirectSuccess(w, r, RouteAdminTheming)
	}
}
