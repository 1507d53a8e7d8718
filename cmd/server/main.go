package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/carhire-site/consent"
	"github.com/jrsteele09/carhire-site/consent/redisstore"
	"github.com/jrsteele09/carhire-site/consent/repofakes"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	"github.com/jrsteele09/carhire-site/consent/submissions/sqlite"
	"github.com/jrsteele09/carhire-site/internal/config"
	"github.com/jrsteele09/carhire-site/internal/metrics"
	"github.com/jrsteele09/carhire-site/server"
	"github.com/jrsteele09/carhire-site/server/authflowrepo"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/jrsteele09/carhire-site/token"
	fakeuserrepo "github.com/jrsteele09/carhire-site/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	cleanupInterval = 5 * time.Minute
	authFlowMaxAge  = 10 * time.Minute
)

func main() {
	c := config.New()
	setupLogging(c.GetEnv())
	m := metrics.New(prometheus.DefaultRegisterer)

	for {
		if err := run(c, m); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func run(c config.Config, m *metrics.Metrics) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeRepos, err := openRepos(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepos()

	handler, err := server.New(c, repos, m)
	if err != nil {
		return err
	}
	go cleanup(ctx, repos)

	displayAppname(c.GetAppName())
	// No WriteTimeout: consent streams stay open for the life of a page view
	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		// Cancelled before shutdown so open consent streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	cancel()
	return shutdown(httpServer)
}

// openRepos picks redis and SQLite when configured and falls back to in-memory stores
func openRepos(ctx context.Context, c config.Config) (server.Repos, func(), error) {
	var closers []func() error
	closeAll := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("Failed to close store")
			}
		}
	}

	var consentStorage consent.Storage
	if url := c.GetRedisURL(); url != "" {
		store, err := redisstore.Connect(ctx, url)
		if err != nil {
			return server.Repos{}, nil, err
		}
		closers = append(closers, store.Close)
		consentStorage = store
		log.Info().Msg("Consent records stored in redis")
	} else {
		consentStorage = repofakes.NewFakeStorage()
		log.Warn().Msg("REDIS_URL not set, consent records are kept in memory")
	}

	var submissionRepo submissions.Repo
	if path := c.GetSubmissionsDBPath(); path != "" {
		store, err := sqlite.Open(path)
		if err != nil {
			closeAll()
			return server.Repos{}, nil, err
		}
		closers = append(closers, store.Close)
		submissionRepo = store
		log.Info().Str("path", path).Msg("Consent submissions stored in SQLite")
	} else {
		submissionRepo = submissions.NewInMemoryRepo()
	}

	return server.Repos{
		Consent:       consentStorage,
		Submissions:   submissionRepo,
		Users:         fakeuserrepo.NewFakeUserRepo(),
		ThemeEvents:   theming.NewInMemoryEventRepo(theming.SeasonalEvents(time.Now().Year())...),
		AuthFlows:     authflowrepo.NewInMemoryRepo(),
		RevokedTokens: token.NewInMemoryRevokedTokenCache(),
	}, closeAll, nil
}

// cleanup drops expired revocations and abandoned sign-in flows until ctx ends
func cleanup(ctx context.Context, repos server.Repos) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := repos.RevokedTokens.Cleanup(); n > 0 {
				log.Debug().Int("removed", n).Msg("Forgot expired token revocations")
			}
			if n := repos.AuthFlows.Prune(now.Add(-authFlowMaxAge)); n > 0 {
				log.Debug().Int("removed", n).Msg("Pruned abandoned sign-in flows")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
