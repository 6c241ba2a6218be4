package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение.
// ack/nack и повторы решает пакет по возвращенной ошибке.
type MessageHandler func(delivery amqp.Delivery) error

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине
type DistributingConsumer struct {
	base    *baseConsumer
	handler MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}
	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}
	return &DistributingConsumer{base: bc, handler: handler}, nil
}

// StartConsuming блокируется до отмены ctx (возвращает nil)
// или до закрытия соединения брокером (возвращает ошибку).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	b := c.base
	if b.channel == nil || b.connection == nil || b.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := b.channel.Consume(b.config.QueueName, b.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing Consumer: failed to consume from '%s': %w", b.config.QueueName, err)
	}
	b.Logger.Info("Waiting for messages", "queue", b.config.QueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := b.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		b.Logger.Info("Context cancelled, consumer stops", "queue", b.config.QueueName)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return fmt.Errorf("distributing Consumer: connection closed")
		}
		b.Logger.Error(amqpErr, "Connection closed for consumer", "queue", b.config.QueueName)
		return amqpErr
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		// Не берем новых сообщений после отмены, даже если они уже в буфере
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.base.Logger.Info("Deliveries channel closed", "queue", c.base.config.QueueName)
				return
			}
			c.base.wg.Add(1)
			go func() {
				defer c.base.wg.Done()
				c.handle(d)
			}()
		}
	}
}

// failureAction - что делать с сообщением после ошибки обработчика
type failureAction int

const (
	actionDrop failureAction = iota
	actionRetry
	actionDeadLetter
)

func decideFailure(cfg ConsumerConfig, deaths int64) failureAction {
	switch {
	case !cfg.EnableRetryMechanism:
		return actionDrop
	case deaths < int64(cfg.MaxRetries):
		return actionRetry
	default:
		return actionDeadLetter
	}
}

func (c *DistributingConsumer) handle(d amqp.Delivery) {
	logger := c.base.Logger
	handlerErr := c.handler(d)
	if handlerErr == nil {
		_ = d.Ack(false)
		logger.Debug("Message acked", "delivery_tag", d.DeliveryTag)
		return
	}

	deaths := deathCount(d.Headers, c.base.config.QueueName)
	logger.Error(handlerErr, "Handler failed", "delivery_tag", d.DeliveryTag, "death_count", deaths)

	switch decideFailure(c.base.config, deaths) {
	case actionDrop, actionRetry:
		// Без DLX-настройки сообщение отбрасывается, с ней - уходит в retry-очередь
		_ = d.Nack(false, false)
	case actionDeadLetter:
		err := c.base.finalDlxPublisher.Publish(context.Background(), c.base.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			logger.Error(err, "Failed to publish to final DLX, message goes through retry again", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		logger.Warn("Max retries reached, message moved to final DLQ", "delivery_tag", d.DeliveryTag)
		_ = d.Ack(false)
	}
}

// Close дожидается активных обработчиков
func (c *DistributingConsumer) Close() error {
	return c.base.Close()
}
