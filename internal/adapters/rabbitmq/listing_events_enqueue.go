package rabbitmq_adapter

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONPublisher - часть rabbitmq_producer.Publisher, нужная адаптеру
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error
}

// ListingEventsQueueAdapter реализует ListingEventsPort поверх RabbitMQ.
type ListingEventsQueueAdapter struct {
	producer   JSONPublisher
	routingKey string
}

func NewListingEventsQueueAdapter(producer JSONPublisher, routingKey string) (*ListingEventsQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routing key cannot be empty")
	}
	return &ListingEventsQueueAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *ListingEventsQueueAdapter) PublishListingChanged(ctx context.Context, event domain.ListingChangedEvent) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ListingEventsQueueAdapter",
		"routing_key": a.routingKey,
		"entity":      string(event.Entity),
		"action":      string(event.Action),
		"entity_id":   event.ID.String(),
	})

	headers := make(amqp.Table)
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.PublishJSON(publishCtx, a.routingKey, toListingChangedDTO(event), headers); err != nil {
		adapterLogger.Error("Failed to publish listing changed event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s %s event: %w", event.Entity, event.Action, err)
	}

	adapterLogger.Debug("Listing changed event published", nil)
	return nil
}
