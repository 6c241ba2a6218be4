package rabbitmq_consumer

import (
	"fmt"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь
	QueueName    string
	DeclareQueue bool
	DurableQueue bool
	QueueArgs    amqp.Table

	// Обменник для привязки; пустое имя - без привязки
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	PrefetchCount int
	ConsumerTag   string

	// Повторы: основная очередь -> RetryExchange -> RetryQueue (TTL) -> обратно.
	// После MaxRetries сообщение уходит в FinalDLXExchange/FinalDLQ.
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if c.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	if c.DeclareExchangeForBind && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("exchange type is required if declaring an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("retry mechanism requires retry exchange/queue and final DLX/DLQ names")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("retry TTL must be positive")
		}
		if c.ExchangeNameForBind == "" {
			return fmt.Errorf("retry mechanism requires a bound exchange to return messages to")
		}
	}
	return nil
}
