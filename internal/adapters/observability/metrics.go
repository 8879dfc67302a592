package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	ScenarioRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "scenario_runs_total", Help: "Scenario executions by outcome."},
		[]string{"suite", "status"},
	)
	ScenarioLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelsuite", Name: "scenario_duration_seconds",
			Help:    "Scenario wall-clock duration seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"suite"},
	)
	SoftFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "soft_failures_total", Help: "Non-fatal checks that did not hold."},
		[]string{"check"},
	)
	Interactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "browser_interactions_total", Help: "Browser interactions."},
		[]string{"action", "status"}, // status: ok|error
	)
	InteractionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelsuite", Name: "browser_interaction_duration_seconds",
			Help:    "Browser interaction duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "http_requests_total", Help: "Report API requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelsuite", Name: "http_request_duration_seconds",
			Help:    "Report API request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "external_requests_total", Help: "Outbound requests to the AUT API."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelsuite", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	LedgerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "ledger_events_total", Help: "Booking ledger records/forgets/purges."},
		[]string{"event"}, // event: record|forget|purge|purge_error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelsuite", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve exposes /metrics on addr in the background and returns the server
// so the caller can shut it down. An empty addr disables it.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry returns the process registry with every collector registered.
// Repeated calls return the same registry.
func InitRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			ScenarioRuns, ScenarioLatency, SoftFailures,
			Interactions, InteractionLatency,
			HTTPRequests, HTTPLatency,
			ExternalRequests, ExternalLatency,
			LedgerEvents, CacheEvents,
		)
	})
	return registry
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveScenario(suite, status string, dur time.Duration) {
	ScenarioRuns.WithLabelValues(suite, status).Inc()
	ScenarioLatency.WithLabelValues(suite).Observe(dur.Seconds())
}

func ObserveSoftFailure(check string) {
	SoftFailures.WithLabelValues(check).Inc()
}

func ObserveInteraction(action string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Interactions.WithLabelValues(action, status).Inc()
	InteractionLatency.WithLabelValues(action).Observe(dur.Seconds())
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveLedger(event string) {
	LedgerEvents.WithLabelValues(event).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
