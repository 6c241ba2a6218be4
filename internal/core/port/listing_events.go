package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// ListingEventsPort - исходящие уведомления об изменениях каталога.
type ListingEventsPort interface {
	PublishListingChanged(ctx context.Context, event domain.ListingChangedEvent) error
}
