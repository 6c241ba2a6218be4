package rabbitmq_adapter

import (
	"fmt"
	"listing-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// ListingChangedDTO - формат сообщения в listings_exchange
type ListingChangedDTO struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toListingChangedDTO(event domain.ListingChangedEvent) ListingChangedDTO {
	return ListingChangedDTO{
		Entity:     string(event.Entity),
		Action:     string(event.Action),
		ID:         event.ID,
		OccurredAt: event.OccurredAt.UTC(),
	}
}

func (d ListingChangedDTO) toDomain() (domain.ListingChangedEvent, error) {
	entity := domain.EntityKind(d.Entity)
	switch entity {
	case domain.EntityBranch, domain.EntityApartment, domain.EntityRoom, domain.EntityImage:
	default:
		return domain.ListingChangedEvent{}, fmt.Errorf("unknown entity %q", d.Entity)
	}
	action := domain.ChangeAction(d.Action)
	switch action {
	case domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted:
	default:
		return domain.ListingChangedEvent{}, fmt.Errorf("unknown action %q", d.Action)
	}
	return domain.ListingChangedEvent{
		Entity:     entity,
		Action:     action,
		ID:         d.ID,
		OccurredAt: d.OccurredAt,
	}, nil
}
