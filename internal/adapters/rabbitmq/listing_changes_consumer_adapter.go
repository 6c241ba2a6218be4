package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ListingChangesConsumerAdapter слушает listing_changes_queue
// и обновляет агрегированное дерево.
type ListingChangesConsumerAdapter struct {
	consumer *rabbitmq_consumer.DistributingConsumer
	useCase  usecases_port.HandleListingChangedUseCasePort
	logger   port.LoggerPort
}

func NewListingChangesConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	uc usecases_port.HandleListingChangedUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingChangesConsumerAdapter, error) {
	adapter := &ListingChangesConsumerAdapter{useCase: uc, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listing changes: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *ListingChangesConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	if err := contracts.Validate(contracts.ListingChangedEvent, d.Body); err != nil {
		msgLogger.Error("Listing changed event does not match schema, dropping message.", err, nil)
		return nil
	}

	var dto ListingChangedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Failed to unmarshal listing changed event, dropping message.", err, nil)
		return nil
	}
	event, err := dto.toDomain()
	if err != nil {
		msgLogger.Error("Invalid listing changed event, dropping message.", err, nil)
		return nil
	}

	handlerLogger := msgLogger.WithFields(port.Fields{
		"entity":    dto.Entity,
		"action":    dto.Action,
		"entity_id": dto.ID.String(),
	})
	ctx := contextkeys.ContextWithTraceID(context.Background(), traceID)
	ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

	if err := a.useCase.Execute(ctx, event); err != nil {
		handlerLogger.Error("Failed to handle listing changed event, message will be retried.", err, nil)
		return err
	}
	return nil
}

// Start реализует EventListenerPort
func (a *ListingChangesConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *ListingChangesConsumerAdapter) Close() error {
	return a.consumer.Close()
}
