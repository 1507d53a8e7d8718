package server

import (
	"net/http"

	"github.com/jrsteele09/carhire-site/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.VisitorMiddleware, s.ThemeMiddleware)...))

	// Cookie consent
	s.RegisterRouteHandler("GET "+RouteConsentStream, ChainMiddleware(s.ConsentStreamHandler(), s.StreamMiddleware(s.VisitorMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPIConsentStatus, ChainMiddleware(s.ConsentStatusHandler(), s.APIMiddleware(s.VisitorMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIConsentChoice, ChainMiddleware(s.ConsentChoiceHandler(), s.APIMiddleware(s.VisitorMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIConsentSubmit, ChainMiddleware(s.ConsentSubmitHandler(), s.APIMiddleware(s.VisitorMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIServicePopupShut, ChainMiddleware(s.ServicePopupClosedHandler(), s.APIMiddleware(s.VisitorMiddleware)...))

	// Theming
	s.RegisterRouteHandler("GET "+RouteAPIActiveTheme, ChainMiddleware(s.ActiveThemeHandler(), s.APIMiddleware(s.ThemeMiddleware)...))

	// Admin login
	s.RegisterRouteHandler("GET "+RouteAdminLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare(s.ThemeMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAdminLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminSSO, ChainMiddleware(s.SSOStartHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))

	// Admin pages (require a valid access token cookie)
	s.RegisterRouteHandler("GET "+RouteAdmin, http.RedirectHandler(RouteAdminDashboard, http.StatusSeeOther))
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.HTMLMiddleWare(s.RequireAdminToken(), s.ThemeMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAdminCookieConsents, ChainMiddleware(s.AdminCookieConsentsHandler(), s.HTMLMiddleWare(s.RequireAdminToken(users.RoleSiteAdmin), s.ThemeMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAdminTheming, ChainMiddleware(s.AdminThemingHandler(), s.HTMLMiddleWare(s.RequireAdminToken(users.RoleSiteAdmin), s.ThemeMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAdminThemePreview, ChainMiddleware(s.ThemePreviewHandler(), s.HTMLMiddleWare(s.RequireAdminToken(users.RoleSiteAdmin))...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	files := http.StripPrefix(RouteStatic, s.fileServer)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RouteStatic {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		files.ServeHTTP(w, r)
	}
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colourMethod(method), path, colourError(error))
}
