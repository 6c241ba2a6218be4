package metrics

import (
	"listing-service/internal/core/domain"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AggregatorMetrics реализует AggregatorMetricsPort.
type AggregatorMetrics struct {
	LoadsTotal      *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	FetchFailures   *prometheus.CounterVec
	SupersededLoads prometheus.Counter
	TreeBranches    prometheus.Gauge
	TreeApartments  prometheus.Gauge
	TreeRooms       prometheus.Gauge
}

// New регистрирует метрики в reg; nil означает глобальный реестр.
func New(reg prometheus.Registerer) *AggregatorMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &AggregatorMetrics{
		LoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_aggregator_loads_total",
			Help: "Applied aggregator loads by resulting status",
		}, []string{"status"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listing_aggregator_fetch_duration_seconds",
			Help:    "Duration of a single collection fetch",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_aggregator_fetch_failures_total",
			Help: "Failed collection fetches",
		}, []string{"resource"}),
		SupersededLoads: factory.NewCounter(prometheus.CounterOpts{
			Name: "listing_aggregator_superseded_loads_total",
			Help: "Loads discarded because a newer load was issued",
		}),
		TreeBranches: factory.NewGauge(prometheus.GaugeOpts{
			Name: "listing_tree_branches",
			Help: "Branches in the applied tree",
		}),
		TreeApartments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "listing_tree_apartments",
			Help: "Apartments in the applied tree",
		}),
		TreeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "listing_tree_rooms",
			Help: "Rooms in the applied tree",
		}),
	}
}

func (m *AggregatorMetrics) ObserveFetch(resource domain.Resource, duration time.Duration, err error) {
	m.FetchDuration.WithLabelValues(string(resource)).Observe(duration.Seconds())
	if err != nil {
		m.FetchFailures.WithLabelValues(string(resource)).Inc()
	}
}

func (m *AggregatorMetrics) RecordLoad(status domain.LoadStatus) {
	m.LoadsTotal.WithLabelValues(string(status)).Inc()
}

func (m *AggregatorMetrics) RecordSuperseded() {
	m.SupersededLoads.Inc()
}

func (m *AggregatorMetrics) SetTreeSize(branches, apartments, rooms int) {
	m.TreeBranches.Set(float64(branches))
	m.TreeApartments.Set(float64(apartments))
	m.TreeRooms.Set(float64(rooms))
}
