package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// CallEvent records metadata about a single API call, including retries.
type CallEvent struct {
	Endpoint   string
	Method     string
	RequestID  string
	StatusCode int
	Attempts   int
	Latency    time.Duration
	Success    bool
	ErrorCode  string
}

// Observer receives events about API calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a logrus logger.
type LogObserver struct {
	log logrus.FieldLogger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log logrus.FieldLogger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	entry := o.log.WithFields(logrus.Fields{
		"endpoint":   event.Endpoint,
		"method":     event.Method,
		"request_id": event.RequestID,
		"status":     event.StatusCode,
		"attempts":   event.Attempts,
		"latency_ms": event.Latency.Milliseconds(),
	})
	if event.Success {
		entry.Info("api call")
		return
	}
	entry.WithField("error_code", event.ErrorCode).Warn("api call failed")
}

// MetricsObserver records call counts and latencies in prometheus.
type MetricsObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsObserver registers the API collectors with reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	f := promauto.With(reg)
	return &MetricsObserver{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftdash",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of allowance API calls by endpoint and status.",
		}, []string{"endpoint", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shiftdash",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for allowance API calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
	}
}

func (o *MetricsObserver) OnCallComplete(event CallEvent) {
	status := "error"
	if event.StatusCode > 0 {
		status = strconv.Itoa(event.StatusCode)
	}
	o.requests.WithLabelValues(event.Endpoint, status).Inc()
	o.duration.WithLabelValues(event.Endpoint).Observe(event.Latency.Seconds())
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		o.OnCallComplete(event)
	}
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
