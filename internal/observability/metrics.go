package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rparrett/synthlang-web/internal/navigation"
)

// Collector holds the Prometheus metrics for the application on its own
// registry, so tests can build as many as they like.
type Collector struct {
	registry  *prometheus.Registry
	namespace string

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ProfilesGenerated *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	MoreWords         prometheus.Counter
	TabsEvicted       prometheus.Counter
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry:  registry,
		namespace: namespace,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ProfilesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profiles_generated_total",
				Help:      "Language profiles generated, by the intent that caused them",
			},
			[]string{"cause"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "navigation_transitions_total",
				Help:      "Navigation intents by source state, target state, and history action",
			},
			[]string{"kind", "from", "to", "action"},
		),
		MoreWords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "more_words_total",
				Help:      "Extra word batches drawn",
			},
		),
		TabsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tabs_evicted_total",
				Help:      "Tabs dropped by capacity or idle expiry",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ProfilesGenerated,
		c.Transitions,
		c.MoreWords,
		c.TabsEvicted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// TrackTabs exposes the number of live tabs as a gauge.
func (c *Collector) TrackTabs(count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "tabs_live",
			Help:      "Browser tabs with a live navigation state machine",
		},
		func() float64 { return float64(count()) },
	))
}

// ObserveRequest records one completed HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, latency time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// ObserveOutcome implements navigation.Observer.
func (c *Collector) ObserveOutcome(o navigation.Outcome) {
	action := o.History.String()
	if !o.Handled {
		action = "default"
	}
	c.Transitions.WithLabelValues(o.Intent.Kind.String(), o.From.String(), o.To.String(), action).Inc()
	if o.Regenerated {
		c.ProfilesGenerated.WithLabelValues(o.Intent.Kind.String()).Inc()
	}
}

// ObserveMoreWords counts one extra word batch.
func (c *Collector) ObserveMoreWords() { c.MoreWords.Inc() }

// ObserveEviction counts one dropped tab.
func (c *Collector) ObserveEviction(string) { c.TabsEvicted.Inc() }

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
