package usecase

import (
	"context"
	"errors"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// listingFetchResult - результаты трех загрузок.
// Каждая горутина пишет только в свои поля.
type listingFetchResult struct {
	branches      []domain.Branch
	branchesErr   error
	apartments    []domain.Apartment
	apartmentsErr error
	rooms         []domain.Room
	roomsErr      error
}

// ListingAggregator загружает филиалы, квартиры и комнаты параллельно
// и хранит последнее собранное дерево. Применяется результат только
// последнего выданного запроса.
type ListingAggregator struct {
	source  port.ListingSourcePort
	metrics port.AggregatorMetricsPort
	now     func() time.Time
	// fetchTimeout ограничивает каждую из трех загрузок; 0 - без ограничения
	fetchTimeout time.Duration

	mu            sync.Mutex
	issued        uint64
	appliedStatus domain.LoadStatus
	state         domain.ListingSnapshot
}

func NewListingAggregator(source port.ListingSourcePort, metrics port.AggregatorMetricsPort) *ListingAggregator {
	return &ListingAggregator{
		source:        source,
		metrics:       metrics,
		now:           time.Now,
		appliedStatus: domain.StatusIdle,
		state: domain.ListingSnapshot{
			Tree:   domain.ListingTree{Branches: []domain.BranchNode{}},
			Status: domain.StatusIdle,
			Errors: map[domain.Resource]*domain.ResourceError{},
		},
	}
}

// WithFetchTimeout задает таймаут одной загрузки коллекции.
// Истекший таймаут становится ошибкой коллекции, а не всей загрузки.
func (a *ListingAggregator) WithFetchTimeout(d time.Duration) *ListingAggregator {
	a.fetchTimeout = d
	return a
}

func (a *ListingAggregator) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.fetchTimeout)
}

// Load выполняет полную перезагрузку дерева.
// Ошибки отдельных коллекций попадают в снимок и не возвращаются как error.
// Возвращает domain.ErrLoadSuperseded, если за время загрузки был выдан
// более новый запрос, и ошибку контекста, если ctx отменен.
func (a *ListingAggregator) Load(ctx context.Context) (*domain.ListingSnapshot, error) {
	a.mu.Lock()
	a.issued++
	seq := a.issued
	a.state.Status = domain.StatusLoading
	a.state.Loading = true
	a.mu.Unlock()

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "LoadListings",
		"sequence": seq,
	})
	ucLogger.Info("Use case started", nil)

	result := a.fetchAll(ctx)

	if err := ctx.Err(); err != nil {
		a.mu.Lock()
		if seq == a.issued {
			// Ждать больше некого: возвращаем статус последнего примененного снимка
			a.state.Status = a.appliedStatus
			a.state.Loading = false
		}
		a.mu.Unlock()
		ucLogger.Warn("Load cancelled, results discarded", port.Fields{"error": err.Error()})
		return nil, err
	}

	tree := AssembleTree(result.branches, result.apartments, result.rooms)
	resourceErrors := collectResourceErrors(result)
	status := domain.StatusReady
	if len(resourceErrors) > 0 {
		status = domain.StatusPartiallyFailed
	}

	a.mu.Lock()
	if seq != a.issued {
		a.mu.Unlock()
		if a.metrics != nil {
			a.metrics.RecordSuperseded()
		}
		ucLogger.Info("Load superseded by a newer request, results discarded", nil)
		return nil, domain.ErrLoadSuperseded
	}
	a.state = domain.ListingSnapshot{
		Tree:     tree,
		Status:   status,
		Loading:  false,
		Errors:   resourceErrors,
		Sequence: seq,
		LoadedAt: a.now(),
	}
	a.appliedStatus = status
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.RecordLoad(status)
		a.metrics.SetTreeSize(len(tree.Branches), tree.ApartmentCount(), tree.RoomCount())
	}

	for resource, resErr := range resourceErrors {
		ucLogger.Warn("Resource failed to load", port.Fields{"resource": resource, "error": resErr.Message})
	}
	ucLogger.Info("Use case finished successfully", port.Fields{
		"status":     status,
		"branches":   len(tree.Branches),
		"apartments": tree.ApartmentCount(),
		"rooms":      tree.RoomCount(),
	})
	return &snapshot, nil
}

// Snapshot возвращает текущее состояние без загрузки.
func (a *ListingAggregator) Snapshot() domain.ListingSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *ListingAggregator) snapshotLocked() domain.ListingSnapshot {
	s := a.state
	s.Errors = maps.Clone(a.state.Errors)
	if s.Errors == nil {
		s.Errors = map[domain.Resource]*domain.ResourceError{}
	}
	return s
}

// fetchAll запускает три загрузки и ждет завершения всех.
// Горутины всегда возвращают nil, поэтому ошибка одной не отменяет остальные.
func (a *ListingAggregator) fetchAll(ctx context.Context) *listingFetchResult {
	var g errgroup.Group
	var result listingFetchResult

	g.Go(func() error {
		fetchCtx, cancel := a.fetchContext(ctx)
		defer cancel()
		start := time.Now()
		result.branches, result.branchesErr = a.source.FetchBranches(fetchCtx, domain.BranchFilter{})
		a.observe(domain.ResourceBranches, start, result.branchesErr)
		return nil
	})
	g.Go(func() error {
		fetchCtx, cancel := a.fetchContext(ctx)
		defer cancel()
		start := time.Now()
		result.apartments, result.apartmentsErr = a.source.FetchApartments(fetchCtx, domain.ApartmentFilter{})
		a.observe(domain.ResourceApartments, start, result.apartmentsErr)
		return nil
	})
	g.Go(func() error {
		fetchCtx, cancel := a.fetchContext(ctx)
		defer cancel()
		start := time.Now()
		result.rooms, result.roomsErr = a.source.FetchRooms(fetchCtx, domain.RoomFilter{})
		a.observe(domain.ResourceRooms, start, result.roomsErr)
		return nil
	})

	_ = g.Wait()
	return &result
}

func (a *ListingAggregator) observe(resource domain.Resource, start time.Time, err error) {
	if a.metrics != nil {
		a.metrics.ObserveFetch(resource, time.Since(start), err)
	}
}

func collectResourceErrors(r *listingFetchResult) map[domain.Resource]*domain.ResourceError {
	out := map[domain.Resource]*domain.ResourceError{}
	add := func(resource domain.Resource, err error) {
		if err == nil {
			return
		}
		out[resource] = &domain.ResourceError{Resource: resource, Message: resourceErrorMessage(err)}
	}
	add(domain.ResourceBranches, r.branchesErr)
	add(domain.ResourceApartments, r.apartmentsErr)
	add(domain.ResourceRooms, r.roomsErr)
	return out
}

func resourceErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
