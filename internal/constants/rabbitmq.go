package constants

const ListingsExchange = "listings_exchange"

const (
	QueueListingChanges      = "listing_changes_queue"
	RoutingKeyListingChanged = "listings.changed"
)

const (
	RetryExchange = "listing_changes_retry_exchange"
	WaitQueue     = "listing_changes_wait_10s"
	RetryTTL      = 10000 // 10 секунд
	MaxRetries    = 3
)

const (
	FinalDLXExchange   = "listing_changes_final_dlx"
	FinalDLQ           = "listing_changes_final_dlq"
	FinalDLQRoutingKey = "listing_changes.dlq.key"
)
