package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "radiotest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests, labelled with the radio command for /commands.",
		},
		[]string{"device", "method", "path", "command", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "radiotest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"device", "method", "path", "status"},
	)
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "radiotest",
			Subsystem: "dispatch",
			Name:      "commands_total",
			Help:      "Commands handled by the dispatcher, by command and status.",
		},
		[]string{"command", "status"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "radiotest",
			Subsystem: "dispatch",
			Name:      "command_duration_seconds",
			Help:      "Time from enqueue to reply per command.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"command"},
	)
	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "radiotest",
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Test sessions started, by kind.",
		},
		[]string{"kind"},
	)
	sessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "radiotest",
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Test sessions ended, by kind and reason.",
		},
		[]string{"kind", "reason"},
	)
	sessionActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "radiotest",
			Subsystem: "session",
			Name:      "active",
			Help:      "1 while a test session is running.",
		},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "radiotest",
			Subsystem: "transport",
			Name:      "frame_errors_total",
			Help:      "Frames rejected before dispatch, by transport.",
		},
		[]string{"transport"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			commandsTotal,
			commandDuration,
			sessionsStarted,
			sessionsEnded,
			sessionActive,
			frameErrors,
		)
	})
}

func RecordHTTPRequest(device, method, path, command string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(device, method, path, command, statusLabel).Inc()
	httpDuration.WithLabelValues(device, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCommand(command, status string, duration time.Duration) {
	RegisterMetrics()
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func RecordSessionStarted(kind string) {
	RegisterMetrics()
	sessionsStarted.WithLabelValues(kind).Inc()
	sessionActive.Set(1)
}

func RecordSessionEnded(kind, reason string) {
	RegisterMetrics()
	sessionsEnded.WithLabelValues(kind, reason).Inc()
	sessionActive.Set(0)
}

func RecordFrameError(transport string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(transport).Inc()
}
