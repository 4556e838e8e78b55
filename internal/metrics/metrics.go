package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	LedgerReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reloads_total",
			Help: "Full ledger reloads by outcome (ok, error, stale)",
		},
		[]string{"result"},
	)

	LedgerRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_rows",
			Help: "Rows in the in-memory ledger, overlay included",
		},
	)

	PendingOverlayRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_pending_overlay_rows",
			Help: "Submitted rows not yet observed by a reload",
		},
	)

	TicketSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_submissions_total",
			Help: "Ticket submissions by document type and outcome",
		},
		[]string{"type", "result"},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			LedgerReloads,
			LedgerRows,
			PendingOverlayRows,
			TicketSubmissions,
		)
	})
}

// PrometheusMiddleware records request counts and latencies per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}
