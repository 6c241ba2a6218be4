package rabbitmq_consumer

import (
	"testing"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func retryConfig() ConsumerConfig {
	return ConsumerConfig{
		Config:               rabbitmq_common.Config{URL: "amqp://localhost"},
		QueueName:            "listing_changes_queue",
		ExchangeNameForBind:  "listings_exchange",
		EnableRetryMechanism: true,
		RetryExchange:        "retry_ex",
		RetryQueue:           "retry_q",
		RetryTTL:             1000,
		FinalDLXExchange:     "final_dlx",
		FinalDLQ:             "final_dlq",
		MaxRetries:           3,
	}
}

func TestDeathCount(t *testing.T) {
	headers := amqp.Table{
		"x-death": []interface{}{
			amqp.Table{"queue": "retry_q", "count": int64(5)},
			amqp.Table{"queue": "listing_changes_queue", "count": int64(2)},
		},
	}
	assert.Equal(t, int64(2), deathCount(headers, "listing_changes_queue"))
	assert.Equal(t, int64(0), deathCount(headers, "other"))
	assert.Equal(t, int64(0), deathCount(nil, "listing_changes_queue"))
	assert.Equal(t, int64(0), deathCount(amqp.Table{"x-death": "garbage"}, "listing_changes_queue"))
}

func TestDecideFailure(t *testing.T) {
	cfg := retryConfig()
	assert.Equal(t, actionRetry, decideFailure(cfg, 0))
	assert.Equal(t, actionRetry, decideFailure(cfg, 2))
	assert.Equal(t, actionDeadLetter, decideFailure(cfg, 3))

	cfg.EnableRetryMechanism = false
	assert.Equal(t, actionDrop, decideFailure(cfg, 10))
}

func TestConsumerConfigValidate(t *testing.T) {
	assert.NoError(t, retryConfig().validate())

	missingQueue := retryConfig()
	missingQueue.QueueName = ""
	assert.Error(t, missingQueue.validate())

	noTTL := retryConfig()
	noTTL.RetryTTL = 0
	assert.Error(t, noTTL.validate())

	noDLQ := retryConfig()
	noDLQ.FinalDLQ = ""
	assert.Error(t, noDLQ.validate())

	plain := ConsumerConfig{Config: rabbitmq_common.Config{URL: "amqp://localhost"}, QueueName: "q"}
	assert.NoError(t, plain.validate())
}
