package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total orders accepted by the store.",
	})

	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Accepted status transitions, by target status.",
	}, []string{"to"})

	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cocktail",
		Subsystem: "tracking",
		Name:      "ws_connections",
		Help:      "Currently open tracking connections.",
	})

	UpdatesPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "tracking",
		Name:      "updates_pushed_total",
		Help:      "orderUpdate messages written to clients.",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})

	HTTPLatencyMS = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cocktail",
		Subsystem: "api",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
)

func init() {
	prometheus.MustRegister(
		OrdersCreated, StatusTransitions,
		WSConnections, UpdatesPushed,
		HTTPRequests, HTTPLatencyMS,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
