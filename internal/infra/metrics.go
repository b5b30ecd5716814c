package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "relevance"

type Metrics struct {
	// Traffic: входящие HTTP-запросы
	HTTPRequests *prometheus.CounterVec

	// Latency входящих запросов (включая поход в Relevance)
	HTTPDuration *prometheus.HistogramVec

	// Вызовы клиента Relevance: outcome = success | error
	UpstreamCalls *prometheus.CounterVec

	UpstreamDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	buckets := []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of handled HTTP requests.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request latencies.",
			Buckets:   buckets,
		}, []string{"method", "route"}),

		UpstreamCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_calls_total",
			Help:      "Total number of calls to the Relevance AI API.",
		}, []string{"operation", "outcome"}),

		UpstreamDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Histogram of Relevance AI API call latencies.",
			Buckets:   buckets,
		}, []string{"operation"}),
	}
}
