package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskpoints_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskpoints_signup_total",
			Help: "Total number of user signups",
		},
	)

	// Task operation counter
	TaskOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_task_operations_total",
			Help: "Total number of task operations",
		},
		[]string{"operation"}, // "assign", "submit_proof", "verify", "reject", "request_work"
	)

	// Join request counter
	JoinRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_join_requests_total",
			Help: "Total number of join request operations",
		},
		[]string{"operation"}, // "create", "approve", "reject"
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // "create", "list", "delete", "resolve_code"
	)

	// Message counter
	MessageCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskpoints_messages_total",
			Help: "Total number of chat messages sent",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_request", "invalid_credentials", "company_mismatch", etc.
	)

	// Leaderboard cache counter
	LeaderboardCacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpoints_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskpoints_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskpoints_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Live chat subscriptions
	ActiveChatConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskpoints_active_chat_connections",
			Help: "Number of currently open chat subscriptions",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskpoints_info",
			Help: "Information about the taskpoints service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(TaskOperationCounter)
	prometheus.MustRegister(JoinRequestCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(MessageCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(LeaderboardCacheCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveChatConnections)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// RecordAuthError increments the auth error counter for a failure type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordTaskOperation increments the task operation counter
func RecordTaskOperation(operation string) {
	TaskOperationCounter.WithLabelValues(operation).Inc()
}

// RecordJoinRequest increments the join request counter
func RecordJoinRequest(operation string) {
	JoinRequestCounter.WithLabelValues(operation).Inc()
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	TenantOperationCounter.WithLabelValues(operation).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.WithLabelValues(endpoint, method, status).Inc()
			RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)

			return err
		}
	}
}
