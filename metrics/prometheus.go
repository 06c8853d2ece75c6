package metrics

import "github.com/prometheus/client_golang/prometheus"

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var NotificationsAttemptedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_attempted_total",
		Help: "Total number of notification channel attempts",
	},
	[]string{"channel", "status"},
)

var NotificationSendDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Time taken to send notifications via external providers",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"channel"},
)

var NotificationRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_retries_total",
		Help: "Total number of notification delivery rounds that ended in a retry",
	},
	[]string{"channel"},
)

var QueueExhaustedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "notification_queue_exhausted_total",
		Help: "Total number of queue entries abandoned after exhausting attempts",
	},
)

var QueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "notification_queue_depth",
		Help: "Unprocessed queue entries currently due",
	},
)

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(HttpRateLimitRejectionsTotal)
}

func InitWorkerMetrics() {
	prometheus.MustRegister(NotificationsAttemptedTotal)
	prometheus.MustRegister(NotificationSendDuration)
	prometheus.MustRegister(NotificationRetriesTotal)
	prometheus.MustRegister(QueueExhaustedTotal)
	prometheus.MustRegister(QueueDepth)
}
