package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the webhook, the upstream
// clients and the proximity searches.
type Metrics struct {
	gatherer prometheus.Gatherer

	WebhookEvents      *prometheus.CounterVec
	UpstreamDurations  *prometheus.HistogramVec
	MalformedRecords   *prometheus.CounterVec
	WideningAttempts   prometheus.Histogram
	StoreCacheRequests *prometheus.CounterVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nearbot_webhook_events_total",
		Help: "Webhook events handled, labeled by route and outcome.",
	}, []string{"route", "status"}))
	if err != nil {
		return nil, err
	}

	upstream, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nearbot_upstream_request_duration_seconds",
		Help:    "Latency of upstream data fetches, labeled by source and outcome.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source", "status"}))
	if err != nil {
		return nil, err
	}

	malformed, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nearbot_malformed_candidates_total",
		Help: "Upstream records skipped because their coordinates could not be parsed.",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	attempts, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearbot_widening_attempts",
		Help:    "Threshold attempts used per toilet search partition.",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	}))
	if err != nil {
		return nil, err
	}

	cache, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nearbot_cache_requests_total",
		Help: "In-process and key-value cache lookups, labeled by cache and result.",
	}, []string{"cache", "result"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:           gatherer,
		WebhookEvents:      events,
		UpstreamDurations:  upstream,
		MalformedRecords:   malformed,
		WideningAttempts:   attempts,
		StoreCacheRequests: cache,
	}, nil
}

// NewTestMetrics registers against a private registry, for tests.
func NewTestMetrics() *Metrics {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}

// Handler serves the gathered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveWebhook counts one handled event. Safe on a nil receiver.
func (m *Metrics) ObserveWebhook(route, status string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(route, status).Inc()
}

// ObserveUpstream records the duration of one upstream call.
func (m *Metrics) ObserveUpstream(source string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.UpstreamDurations.WithLabelValues(source, status).Observe(time.Since(start).Seconds())
}

// ObserveMalformed counts one skipped record.
func (m *Metrics) ObserveMalformed(source string) {
	if m == nil {
		return
	}
	m.MalformedRecords.WithLabelValues(source).Inc()
}

// ObserveWidening records how many attempts one partition search used.
func (m *Metrics) ObserveWidening(attempts int) {
	if m == nil {
		return
	}
	m.WideningAttempts.Observe(float64(attempts))
}

// ObserveCache counts a cache hit or miss.
func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.StoreCacheRequests.WithLabelValues(cache, result).Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				var zero T
				return zero, fmt.Errorf("collector already registered with a different type: %T", are.ExistingCollector)
			}
			return existing, nil
		}
		var zero T
		return zero, err
	}
	return c, nil
}
