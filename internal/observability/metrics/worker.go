package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	parseTotal        *prometheus.CounterVec
	parseDuration     *prometheus.HistogramVec
	parseInFlight     prometheus.Gauge
	queueLag          *prometheus.HistogramVec
	textFallbackTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	parseTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "risiti",
			Subsystem: "worker",
			Name:      "bill_parse_total",
			Help:      "Total parsed bills by status.",
		},
		[]string{"service", "status"},
	)
	parseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "risiti",
			Subsystem: "worker",
			Name:      "bill_parse_duration_seconds",
			Help:      "Bill parsing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	parseInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "risiti",
			Subsystem: "worker",
			Name:      "bill_parse_in_flight",
			Help:      "Number of in-flight bill parsing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "risiti",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between bill upload and parsing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	textFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "risiti",
			Subsystem: "worker",
			Name:      "text_fallback_total",
			Help:      "Total parses that fell back to text-layer extraction.",
		},
		[]string{"service"},
	)

	registry.MustRegister(parseTotal, parseDuration, parseInFlight, queueLag, textFallbackTotal)

	return &WorkerMetrics{
		registry:          registry,
		parseTotal:        parseTotal,
		parseDuration:     parseDuration,
		parseInFlight:     parseInFlight,
		queueLag:          queueLag,
		textFallbackTotal: textFallbackTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartParse() {
	m.parseInFlight.Inc()
}

func (m *WorkerMetrics) FinishParse(service string, duration time.Duration, err error) {
	m.parseInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.parseTotal.WithLabelValues(service, status).Inc()
	m.parseDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordTextFallback(service string) {
	m.textFallbackTotal.WithLabelValues(service).Inc()
}
