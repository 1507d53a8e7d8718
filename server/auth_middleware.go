package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/carhire-site/token"
	"github.com/jrsteele09/carhire-site/token/jwt"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAdmin stores the introspected access token of the signed-in admin
	ContextKeyAdmin ContextKey = "admin"
	// ContextKeyAccessToken stores the raw access token
	ContextKeyAccessToken ContextKey = "access_token"
)

// cookieTokenStore reads the admin access token from the request: the access_token
// cookie first, then an Authorization: Bearer header.
type cookieTokenStore struct {
	r *http.Request
}

var _ token.Store = cookieTokenStore{}

func (c cookieTokenStore) GetAccessToken() (string, bool) {
	if cookie, err := c.r.Cookie(cookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return token.FromAuthorizationHeader(c.r.Header.Get("Authorization")).GetAccessToken()
}

// RequireAdminToken is middleware for admin pages. The token's expiry is checked first
// without verifying it; only tokens that are still current are verified and introspected.
// With roles given, the token must carry at least one of them.
func (s *Server) RequireAdminToken(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store := cookieTokenStore{r: r}
			if !s.checker.WithStore(store).IsCurrentTokenValid() {
				s.countTokenCheck("expired")
				s.clearAccessTokenCookie(w, r)
				redirectToLogin(w, r, "Session expired")
				return
			}

			rawToken, _ := store.GetAccessToken()
			info, err := s.inspector.Introspect(rawToken)
			if err != nil || !info.Active {
				log.Debug().Err(err).Msg("Admin token rejected")
				s.countTokenCheck("invalid")
				s.clearAccessTokenCookie(w, r)
				redirectToLogin(w, r, "Invalid session")
				return
			}

			if !hasAnyRole(info, roles) {
				s.countTokenCheck("forbidden")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			s.countTokenCheck("valid")
			ctx := context.WithValue(r.Context(), ContextKeyAdmin, info)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, rawToken)
			next(w, r.WithContext(ctx))
		}
	}
}

func hasAnyRole(info *jwt.TokenIntrospection, roles []users.RoleType) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if info.HasRole(string(role)) {
			return true
		}
	}
	return false
}

func (s *Server) countTokenCheck(result string) {
	if s.metrics != nil {
		s.metrics.IncrementTokenCheck(result)
	}
}

// adminFromContext returns the admin set by RequireAdminToken
func adminFromContext(ctx context.Context) (*jwt.TokenIntrospection, string) {
	info, _ := ctx.Value(ContextKeyAdmin).(*jwt.TokenIntrospection)
	raw, _ := ctx.Value(ContextKeyAccessToken).(string)
	return info, raw
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, errorMsg string) {
	q := url.Values{}
	q.Set("error", errorMsg)
	if r.Method == http.MethodGet {
		q.Set("next", r.URL.RequestURI())
	}
	redirectSuccess(w, r, RouteAdminLogin+"?"+q.Encode())
}
