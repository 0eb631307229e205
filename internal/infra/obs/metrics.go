package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainpricing "staybook/internal/domain/pricing"
)

// Metrics owns a private registry rather than the global default.
type Metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	messages     *prometheus.CounterVec
	msgDuration  *prometheus.HistogramVec
	quotes       *prometheus.CounterVec
	payable      prometheus.Histogram
	submissions  *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_messages_total",
			Help:      "Commands and queries by key and outcome.",
		}, []string{"kind", "key", "outcome"}),
		msgDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bus_message_duration_seconds",
			Help:      "Handler latency per command or query.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "key"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Computed quotes by discount tier.",
		}, []string{"tier"}),
		payable: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_payable_amount",
			Help:      "Payable amount of bookable quotes.",
			Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Booking submissions by mode and result.",
		}, []string{"mode", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.messages, m.msgDuration,
		m.quotes, m.payable, m.submissions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveMessage satisfies the bus metrics middleware recorder.
func (m *Metrics) ObserveMessage(kind, key, outcome string, elapsed time.Duration) {
	m.messages.WithLabelValues(kind, key, outcome).Inc()
	m.msgDuration.WithLabelValues(kind, key).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuote(b domainpricing.Breakdown) {
	m.quotes.WithLabelValues(string(b.Tier)).Inc()
	if b.Bookable() {
		m.payable.Observe(float64(b.Payable))
	}
}

func (m *Metrics) ObserveSubmission(mode, result string) {
	m.submissions.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
