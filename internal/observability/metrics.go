package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_admin", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_admin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RideListDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_admin",
			Name:      "ride_list_duration_seconds",
			Help:      "Ride list query latency by ordering",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"ordering"},
	)
	RideEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_admin", Name: "ride_events_published_total", Help: "Ride events published to the live feed"},
		[]string{"result"},
	)
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_admin", Name: "websocket_clients", Help: "Connected live feed clients"})
)
