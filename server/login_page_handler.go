package server

import (
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	BrandName  string
	Logo       theming.LogoData
	Action     string
	Next       string
	Error      string
	Email      string // Preserve email on error
	SSOEnabled bool
	SSOPath    string
}

// LoginPageUIHandler displays the admin login page (GET /admin/login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		// Already signed in
		if s.checker.WithStore(cookieTokenStore{r: r}).IsCurrentTokenValid() {
			if raw, _ := (cookieTokenStore{r: r}).GetAccessToken(); raw != "" {
				if info, err := s.inspector.Introspect(raw); err == nil && info.Active {
					redirectSuccess(w, r, safeNext(r.URL.Query().Get("next")))
					return
				}
			}
		}

		active := theming.FromContext(r.Context())
		next := safeNext(r.URL.Query().Get("next"))
		data := LoginPageData{
			BrandName:  s.config.GetBrandName(),
			Logo:       theming.Logo(active.Theme, s.config.GetBrandName()),
			Action:     RouteAdminLogin,
			Next:       next,
			Error:      r.URL.Query().Get("error"),
			Email:      r.URL.Query().Get("email"),
			SSOEnabled: s.ssoEnabled(),
			SSOPath:    RouteAdminSSO + "?next=" + next,
		}
		w.Header().Set("Cache-Control", "no-store")
		renderHTML(w, loginTmpl, data)
	}
}

// LoginSubmissionHandler checks the admin's password and issues the access token cookie
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := users.NormaliseEmail(r.FormValue("email"))
		password := r.FormValue("password")
		next := safeNext(r.FormValue("next"))

		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email and password are required", email)
			return
		}

		user, err := s.authenticate(email, password)
		if err != nil {
			log.Info().Err(err).Str("email", email).Msg("Admin login failed")
			s.countLogin("password", "failed")
			s.renderLoginError(w, r, "Invalid email or password", email)
			return
		}

		if err := s.issueAccessToken(w, r, user); err != nil {
			log.Err(err).Msg("Failed to issue access token")
			s.renderLoginError(w, r, "Sign in failed, please try again", email)
			return
		}
		s.countLogin("password", "ok")
		redirectSuccess(w, r, next)
	}
}

func (s *Server) authenticate(email, password string) (*users.User, error) {
	user, err := s.repos.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "account blocked")
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// issueAccessToken signs a token for user, sets the cookie and records the login
func (s *Server) issueAccessToken(w http.ResponseWriter, r *http.Request, user *users.User) error {
	accessToken, expires, err := s.creator.CreateAccessToken(user)
	if err != nil {
		return err
	}
	s.setAccessTokenCookie(w, r, accessToken, expires)

	user.LastLogin = time.Now()
	if err := s.repos.Users.Upsert(user); err != nil {
		log.Warn().Err(err).Msg("Failed to record last login")
	}
	return nil
}

func (s *Server) countLogin(method, result string) {
	if s.metrics != nil {
		s.metrics.IncrementAdminLogin(method, result)
	}
}

// LogoutHandler revokes the current access token and clears the cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := (cookieTokenStore{r: r}).GetAccessToken(); ok {
			if info, err := s.inspector.Introspect(raw); err == nil && info.Jti != "" {
				if err := s.repos.RevokedTokens.Add(info.Jti, info.Exp); err != nil {
					log.Err(err).Msg("Failed to revoke access token")
				}
			}
		}
		s.clearAccessTokenCookie(w, r)
		redirectSuccess(w, r, RouteAdminLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	path := RouteAdminLogin
	if email != "" {
		path += "?email=" + url.QueryEscape(email) + "&error=" + url.QueryEscape(errorMsg)
		redirectSuccess(w, r, path)
		return
	}
	redirectWithError(w, r, path, errorMsg)
}
