package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the site.
// Tracks consent decisions, live consent streams and admin token checks.
type Metrics struct {
	ConsentChoices  *prometheus.CounterVec
	PromptsShown    prometheus.Counter
	ConsentStreams  prometheus.Gauge
	TokenChecks     *prometheus.CounterVec
	AdminLogins     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConsentChoices: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carhire_consent_choices_total",
			Help: "Cookie consent choices recorded, by choice",
		}, []string{"choice"}),
		PromptsShown: factory.NewCounter(prometheus.CounterOpts{
			Name: "carhire_consent_prompts_shown_total",
			Help: "Times the consent banner was made visible",
		}),
		ConsentStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "carhire_consent_streams",
			Help: "Open consent event streams (one per page view)",
		}),
		TokenChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carhire_admin_token_checks_total",
			Help: "Admin access token checks, by result",
		}, []string{"result"}),
		AdminLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carhire_admin_logins_total",
			Help: "Admin login attempts, by method and result",
		}, []string{"method", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carhire_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
	}
}

func (m *Metrics) IncrementConsentChoice(choice string) {
	m.ConsentChoices.WithLabelValues(choice).Inc()
}

func (m *Metrics) IncrementPromptShown() {
	m.PromptsShown.Inc()
}

// StreamOpened tracks a consent stream; call the returned func when it closes.
func (m *Metrics) StreamOpened() func() {
	m.ConsentStreams.Inc()
	return m.ConsentStreams.Dec
}

func (m *Metrics) IncrementTokenCheck(result string) {
	m.TokenChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementAdminLogin(method, result string) {
	m.AdminLogins.WithLabelValues(method, result).Inc()
}

// ObserveRequest records the duration of a request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(route string, start time.Time) {
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
