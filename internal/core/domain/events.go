package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	EntityBranch    EntityKind = "branch"
	EntityApartment EntityKind = "apartment"
	EntityRoom      EntityKind = "room"
	EntityImage     EntityKind = "image"
)

type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ListingChangedEvent публикуется после каждой успешной операции в админке.
type ListingChangedEvent struct {
	Entity     EntityKind
	Action     ChangeAction
	ID         uuid.UUID
	OccurredAt time.Time
}
