package usecase

import (
	"context"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"time"

	"github.com/google/uuid"
)

// publishChange отправляет событие после успешной записи.
// Запись уже зафиксирована, поэтому ошибка публикации только логируется.
func publishChange(ctx context.Context, events port.ListingEventsPort, logger port.LoggerPort, entity domain.EntityKind, action domain.ChangeAction, id uuid.UUID) {
	if events == nil {
		return
	}
	event := domain.ListingChangedEvent{
		Entity:     entity,
		Action:     action,
		ID:         id,
		OccurredAt: time.Now().UTC(),
	}
	if err := events.PublishListingChanged(ctx, event); err != nil {
		logger.Warn("Failed to publish listing change event", port.Fields{
			"entity": entity,
			"action": action,
			"id":     id,
			"error":  err.Error(),
		})
	}
}
