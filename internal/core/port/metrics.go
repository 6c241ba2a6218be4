package port

import (
	"listing-service/internal/core/domain"
	"time"
)

// AggregatorMetricsPort - метрики агрегатора. Реализация может быть nil.
type AggregatorMetricsPort interface {
	ObserveFetch(resource domain.Resource, duration time.Duration, err error)
	RecordLoad(status domain.LoadStatus)
	RecordSuperseded()
	SetTreeSize(branches, apartments, rooms int)
}
