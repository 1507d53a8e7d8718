package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Consent
	RouteConsentStream       = "/consent/stream"
	RouteAPIConsentStatus    = "/api/cookie-consent"
	RouteAPIConsentChoice    = "/api/cookie-consent/choice"
	RouteAPIConsentSubmit    = "/api/cookie-consent/submit"
	RouteAPIServicePopupShut = "/api/events/service-popup-closed"

	// Theming
	RouteAPIActiveTheme = "/api/theme/active"

	// Admin auth
	RouteAdminLogin    = "/admin/login"
	RouteAdminLogout   = "/admin/logout"
	RouteAdminSSO      = "/admin/sso"
	RouteAdminCallback = "/admin/callback"

	// Admin pages
	RouteAdmin               = "/admin"
	RouteAdminDashboard      = "/admin/dashboard"
	RouteAdminCookieConsents = "/admin/cookie-consents"
	RouteAdminTheming        = "/admin/theming"
	RouteAdminThemePreview   = "/admin/theming/preview"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/"
)

// Cookie names
const (
	cookieVisitorID    = "visitor_id"
	cookieAccessToken  = "access_token"
	cookiePreviewTheme = "preview_theme"
	cookieAuthFlow     = "auth_flow_state"
)
