package notifier

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"sync"
)

type eventWithContext struct {
	traceID string
	event   domain.ListingChangedEvent
}

// InProcessNotifier реализует ListingEventsPort без брокера: события
// складываются в буферизованный канал и обрабатываются диспетчером.
// Используется, когда RabbitMQ выключен.
type InProcessNotifier struct {
	handler   usecases_port.HandleListingChangedUseCasePort
	eventChan chan eventWithContext
	logger    port.LoggerPort

	mu        sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewInProcessNotifier(handler usecases_port.HandleListingChangedUseCasePort, baseLogger port.LoggerPort, buffer int) *InProcessNotifier {
	if buffer <= 0 {
		buffer = 100
	}
	return &InProcessNotifier{
		handler:   handler,
		eventChan: make(chan eventWithContext, buffer),
		logger:    baseLogger.WithFields(port.Fields{"component": "InProcessNotifier"}),
		done:      make(chan struct{}),
	}
}

// PublishListingChanged не блокирует: при переполненном буфере событие отбрасывается.
func (n *InProcessNotifier) PublishListingChanged(ctx context.Context, event domain.ListingChangedEvent) error {
	select {
	case n.eventChan <- eventWithContext{traceID: contextkeys.TraceIDFromContext(ctx), event: event}:
	default:
		n.logger.Warn("Event buffer is full, dropping listing changed event", port.Fields{
			"entity": string(event.Entity),
			"action": string(event.Action),
		})
	}
	return nil
}

// Start реализует EventListenerPort; блокирует до отмены ctx или Close.
func (n *InProcessNotifier) Start(ctx context.Context) error {
	n.mu.Lock()
	select {
	case <-n.done:
		n.mu.Unlock()
		return nil
	default:
	}
	n.wg.Add(1)
	n.mu.Unlock()
	defer n.wg.Done()

	n.logger.Info("Dispatcher started", nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.done:
			return nil
		case item := <-n.eventChan:
			n.dispatch(ctx, item)
		}
	}
}

func (n *InProcessNotifier) dispatch(ctx context.Context, item eventWithContext) {
	eventLogger := n.logger.WithFields(port.Fields{
		"trace_id": item.traceID,
		"entity":   string(item.event.Entity),
		"action":   string(item.event.Action),
	})
	eventCtx := contextkeys.ContextWithLogger(ctx, eventLogger)
	if item.traceID != "" {
		eventCtx = contextkeys.ContextWithTraceID(eventCtx, item.traceID)
	}
	if err := n.handler.Execute(eventCtx, item.event); err != nil {
		eventLogger.Error("Failed to handle listing changed event", err, nil)
	}
}

// Close останавливает диспетчер и ждет завершения текущего события.
func (n *InProcessNotifier) Close() error {
	n.mu.Lock()
	n.closeOnce.Do(func() { close(n.done) })
	n.mu.Unlock()
	n.wg.Wait()
	return nil
}
