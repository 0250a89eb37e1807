package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "safetyforher",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Location metrics
	LocationQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "location",
		Name:      "queries_total",
		Help:      "Total single-shot location queries issued",
	})

	LocationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "location",
		Name:      "failures_total",
		Help:      "Total failed location queries",
	}, []string{"reason"})

	// Tracking metrics
	TrackingSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "tracking",
		Name:      "sessions_started_total",
		Help:      "Total tracking sessions started",
	})

	TrackingSessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "tracking",
		Name:      "sessions_expired_total",
		Help:      "Total tracking sessions ended by automatic expiry",
	})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "tracking",
		Name:      "notifications_sent_total",
		Help:      "Total location notifications delivered to contacts",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "tracking",
		Name:      "notifications_failed_total",
		Help:      "Total location notifications that failed delivery",
	})

	// Lookup fallback metrics
	PlaceLookupFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "lookup",
		Name:      "place_fallbacks_total",
		Help:      "Total place lookups served from the static fallback list",
	}, []string{"kind"})

	NewsFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "lookup",
		Name:      "news_fallbacks_total",
		Help:      "Total news fetches served from the static fallback feed",
	})

	// Map metrics
	ActiveMarkers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "safetyforher",
		Subsystem: "map",
		Name:      "active_markers",
		Help:      "Overlays currently drawn, per category",
	}, []string{"category"})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetyforher",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
