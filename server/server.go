package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/carhire-site/consent"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	"github.com/jrsteele09/carhire-site/internal/config"
	"github.com/jrsteele09/carhire-site/internal/metrics"
	"github.com/jrsteele09/carhire-site/server/authflowrepo"
	"github.com/jrsteele09/carhire-site/server/pageviews"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/jrsteele09/carhire-site/token"
	"github.com/jrsteele09/carhire-site/token/jwt"
	"github.com/jrsteele09/carhire-site/token/keys"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// defaultKeepAlive is how often an idle consent stream sends a comment line
const defaultKeepAlive = 15 * time.Second

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// Repos groups the storage the server is built on
type Repos struct {
	Consent       consent.Storage // shared by all visitors, namespaced per visitor
	Submissions   submissions.Repo
	Users         users.UserRepo
	ThemeEvents   theming.EventRepo
	AuthFlows     authflowrepo.Repo
	RevokedTokens token.RevokedTokenCache
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	fileServer http.Handler
	config     config.Config
	repos      Repos
	metrics    *metrics.Metrics

	signer    *keys.HMACSigner
	creator   *jwt.Creator
	checker   *jwt.Checker
	inspector *jwt.Inspector
	themes    *theming.Provider
	views     *pageviews.Registry
	keepAlive time.Duration

	adminLayout *template.Template

	oidcConfig *OidcConfig
	oidcLock   sync.Mutex
}

func New(config config.Config, repos Repos, m *metrics.Metrics) (*Server, error) {
	if repos.Users == nil || repos.Submissions == nil || repos.ThemeEvents == nil || repos.AuthFlows == nil || repos.RevokedTokens == nil {
		return nil, fmt.Errorf("[Server New] missing repository")
	}

	signer, err := newSigner(config)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token signer: %w", err)
	}

	checker := jwt.NewChecker(nil, jwt.WithExpiryBuffer(config.GetTokenExpiryBuffer()))
	resolver := theming.NewResolver(repos.ThemeEvents, theming.WithEnabled(config.GetThemingEnabled()))

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		fileServer: FileServerHandler(),
		config:     config,
		repos:      repos,
		metrics:    m,
		signer:     signer,
		creator:    jwt.NewCreator(config, signer),
		checker:    checker,
		inspector:  jwt.NewInspector(checker, signer, repos.RevokedTokens),
		themes:     theming.NewProvider(resolver),
		views:      pageviews.NewRegistry(),
		keepAlive:  defaultKeepAlive,

		adminLayout: mustParseTemplate(adminLayoutSource),
	}

	if _, err := s.BootstrapAdmin(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] failed to bootstrap admin: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// newSigner uses the configured secret. Outside DEV a secret is required; in DEV a random
// one is generated, so tokens do not survive a restart.
func newSigner(config config.Config) (*keys.HMACSigner, error) {
	secret := config.GetTokenSigningSecret()
	if secret == "" {
		if config.GetEnv() != "DEV" {
			return nil, fmt.Errorf("TOKEN_SIGNING_SECRET must be set")
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(b)
		log.Warn().Msg("TOKEN_SIGNING_SECRET not set, using a random secret for this run")
	}
	return keys.NewHMACSigner(secret)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Views exposes the open page views
func (s *Server) Views() *pageviews.Registry {
	return s.views
}

// SetKeepAlive changes the consent stream keep-alive interval
func (s *Server) SetKeepAlive(d time.Duration) {
	if d > 0 {
		s.keepAlive = d
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
