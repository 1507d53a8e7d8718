package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/carhire-site/server/authflowrepo"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// SSOStartHandler sends the admin to the identity provider using PKCE
func (s *Server) SSOStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.ssoEnabled() {
			redirectWithError(w, r, RouteAdminLogin, "Single sign-on is not configured")
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			log.Err(err).Msg("Identity provider discovery failed")
			redirectWithError(w, r, RouteAdminLogin, "Single sign-on is unavailable")
			return
		}

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		codeVerifier := generateRandomString(64)

		err = s.repos.AuthFlows.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    safeNext(r.URL.Query().Get("next")),
			CreatedAt:    time.Now(),
		})
		if err != nil {
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}
		s.setAuthFlowCookie(w, r, state, int(authFlowMaxAge.Seconds()))

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oidc.Nonce(nonce),
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OAuthCallbackHandler completes single sign-on and issues the admin access token
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue covers both query params and the form_post response mode
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		// The flow cookie is single use
		s.setAuthFlowCookie(w, r, "", -1)

		if errorParam != "" {
			log.Warn().Str("error", errorParam).Str("description", errorDesc).Msg("Identity provider refused sign-in")
			s.countLogin("sso", "failed")
			redirectWithError(w, r, RouteAdminLogin, "Sign in was cancelled")
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(cookieAuthFlow)
		if err != nil || cookie.Value != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		authState, err := s.repos.AuthFlows.Take(state)
		if err != nil || authState.Expired(time.Now(), authFlowMaxAge) {
			redirectWithError(w, r, RouteAdminLogin, "Sign in took too long, please try again")
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get OIDC config: %v", err), http.StatusInternalServerError)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", authState.CodeVerifier),
		)
		if err != nil {
			log.Err(err).Msg("Token exchange failed")
			s.countLogin("sso", "failed")
			redirectWithError(w, r, RouteAdminLogin, "Sign in failed, please try again")
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusInternalServerError)
			return
		}

		idToken, err := oidcConfig.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			log.Err(err).Msg("ID token verification failed")
			s.countLogin("sso", "failed")
			redirectWithError(w, r, RouteAdminLogin, "Sign in failed, please try again")
			return
		}

		var claims struct {
			Nonce         string `json:"nonce"`
			Email         string `json:"email"`
			EmailVerified *bool  `json:"email_verified"`
		}
		if err := idToken.Claims(&claims); err != nil {
			http.Error(w, fmt.Sprintf("Failed to extract claims: %v", err), http.StatusInternalServerError)
			return
		}

		if claims.Nonce != authState.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}
		if claims.EmailVerified != nil && !*claims.EmailVerified {
			s.countLogin("sso", "failed")
			redirectWithError(w, r, RouteAdminLogin, "Your email address is not verified")
			return
		}

		// Only existing admin accounts may sign in
		user, err := s.repos.Users.GetByEmail(users.NormaliseEmail(claims.Email))
		if err != nil || user.Blocked {
			log.Info().Str("email", claims.Email).Msg("Single sign-on for unknown or blocked admin")
			s.countLogin("sso", "failed")
			redirectWithError(w, r, RouteAdminLogin, "No admin account for "+claims.Email)
			return
		}

		if err := s.issueAccessToken(w, r, user); err != nil {
			log.Err(err).Msg("Failed to issue access token")
			redirectWithError(w, r, RouteAdminLogin, "Sign in failed, please try again")
			return
		}
		s.countLogin("sso", "ok")
		redirectSuccess(w, r, authState.ReturnURL)
	}
}
