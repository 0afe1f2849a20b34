package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PositionsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_positions_fetched_total",
		Help: "Total position records fetched from the source platform",
	})
	PositionsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_positions_forwarded_total",
		Help: "Total position records forwarded to the translation stage",
	})
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_fetch_errors_total",
		Help: "Failed position fetches (whole tick aborted)",
	})
	ForwardErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_forward_errors_total",
		Help: "Failed forwards to the translation stage",
	})
	TicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_ticks_skipped_total",
		Help: "Poll ticks skipped because the previous fetch was in flight",
	})
	RegistryRefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_registry_refresh_errors_total",
		Help: "Failed device registry refreshes",
	})
	EventsTranslated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_events_translated_total",
		Help: "Enriched events accepted by the translation ingress",
	})
	ActivitiesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_activities_classified_total",
		Help: "Activity codes emitted by classification",
	}, []string{"activity"})
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_deliveries_total",
		Help: "Downstream delivery outcomes by status",
	}, []string{"status"})
	DeliveryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridge_delivery_latency_seconds",
		Help:    "Latency of downstream delivery calls",
		Buckets: prometheus.DefBuckets,
	})
)
