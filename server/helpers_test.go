package server_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/carhire-site/consent/repofakes"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	"github.com/jrsteele09/carhire-site/internal/config"
	"github.com/jrsteele09/carhire-site/internal/metrics"
	"github.com/jrsteele09/carhire-site/server"
	"github.com/jrsteele09/carhire-site/server/authflowrepo"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/jrsteele09/carhire-site/token"
	"github.com/jrsteele09/carhire-site/users"
	fakeuserrepo "github.com/jrsteele09/carhire-site/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@carhire.test"
	adminPassword = "Sup3rSecret!"
	editorEmail   = "editor@carhire.test"
	testSecret    = "0123456789abcdef0123456789abcdef"
)

type testConfig struct {
	config.Config
	delay   time.Duration
	theming bool
}

func (testConfig) GetEnv() string                          { return "TEST" }
func (testConfig) GetAppName() string                      { return "Car Hire" }
func (testConfig) GetBrandName() string                    { return "Car Hire" }
func (testConfig) GetBaseURL() string                      { return "http://localhost:8080" }
func (testConfig) GetTokenSigningSecret() string           { return testSecret }
func (testConfig) GetAccessTokenExpiry() time.Duration     { return time.Hour }
func (testConfig) GetTokenExpiryBuffer() time.Duration     { return 5 * time.Second }
func (testConfig) GetAdminEmail() string                   { return adminEmail }
func (testConfig) GetAdminPassword() string                { return adminPassword }
func (testConfig) GetAdminName() string                    { return "Site Admin" }
func (testConfig) GetOIDCIssuerURL() string                { return "" }
func (testConfig) GetOIDCClientID() string                 { return "" }
func (c testConfig) GetConsentInitialDelay() time.Duration { return c.delay }
func (c testConfig) GetThemingEnabled() bool               { return c.theming }

type testEnv struct {
	server      *server.Server
	storage     *repofakes.FakeStorage
	submissions *submissions.InMemoryRepo
	users       users.UserRepo
	revoked     *token.InMemoryRevokedTokenCache
	metrics     *metrics.Metrics
}

type envOption func(*testConfig, *[]theming.Event)

func withDelay(d time.Duration) envOption {
	return func(c *testConfig, _ *[]theming.Event) { c.delay = d }
}

func withEvents(events ...theming.Event) envOption {
	return func(_ *testConfig, e *[]theming.Event) { *e = append(*e, events...) }
}

func withThemingDisabled() envOption {
	return func(c *testConfig, _ *[]theming.Event) { c.theming = false }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := testConfig{Config: config.New(), delay: time.Hour, theming: true}
	var events []theming.Event
	for _, opt := range opts {
		opt(&cfg, &events)
	}

	env := &testEnv{
		storage:     repofakes.NewFakeStorage(),
		submissions: submissions.NewInMemoryRepo(),
		users:       fakeuserrepo.NewFakeUserRepo(),
		revoked:     token.NewInMemoryRevokedTokenCache(),
		metrics:     metrics.New(prometheus.NewRegistry()),
	}

	editorHash, err := users.HashPassword(adminPassword)
	require.NoError(t, err)
	require.NoError(t, env.users.Upsert(&users.User{
		Email:        editorEmail,
		Name:         "Content Editor",
		PasswordHash: editorHash,
		Roles:        []users.RoleType{users.RoleEditor},
	}))

	srv, err := server.New(cfg, server.Repos{
		Consent:       env.storage,
		Submissions:   env.submissions,
		Users:         env.users,
		ThemeEvents:   theming.NewInMemoryEventRepo(events...),
		AuthFlows:     authflowrepo.NewInMemoryRepo(),
		RevokedTokens: env.revoked,
	}, env.metrics)
	require.NoError(t, err)
	srv.SetKeepAlive(time.Hour)
	env.server = srv
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// httpServer starts a real listener for the stream tests. Its Close is registered
// before any stream is opened, so cleanup ends the streams first and Close does
// not wait on a live connection.
func (e *testEnv) httpServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(e.server)
	t.Cleanup(ts.Close)
	return ts
}

// login signs in with the password form and returns the access token cookie
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	form := "email=" + email + "&password=" + adminPassword
	req := httptest.NewRequest(http.MethodPost, server.RouteAdminLogin, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := e.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no access token cookie")
	return nil
}

func visitorCookie() *http.Cookie {
	return &http.Cookie{Name: "visitor_id", Value: uuid.NewString()}
}

func today() time.Time {
	return theming.Day(time.Now())
}

// consentStream reads the data lines of a consent event stream
type consentStream struct {
	viewID string
	data   chan string
	cancel context.CancelFunc
}

// close ends the stream as a browser leaving the page would
func (c *consentStream) close() {
	c.cancel()
}

func openConsentStream(t *testing.T, ts *httptest.Server, visitor *http.Cookie) *consentStream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	viewID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+server.RouteConsentStream+"?view="+viewID, nil)
	require.NoError(t, err)
	req.AddCookie(visitor)

	resp, err := ts.Client().Do(req)
	if err != nil {
		cancel()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = resp.Body.Close()
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	stream := &consentStream{viewID: viewID, data: make(chan string, 16), cancel: cancel}
	go func() {
		defer close(stream.data)
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
				stream.data <- data
			}
		}
	}()
	return stream
}

func (c *consentStream) next(t *testing.T) string {
	t.Helper()
	select {
	case data, ok := <-c.data:
		require.True(t, ok, "stream closed")
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for consent event")
		return ""
	}
}

func (c *consentStream) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case data := <-c.data:
		t.Fatalf("unexpected consent event %s", data)
	case <-time.After(d):
	}
}
