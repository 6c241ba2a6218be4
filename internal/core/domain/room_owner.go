package domain

import (
	"github.com/google/uuid"
)

// OwnerKind - дискриминант владельца комнаты.
type OwnerKind int

const (
	OwnerUnattached OwnerKind = iota
	OwnerApartment
	OwnerBranch
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerApartment:
		return "apartment"
	case OwnerBranch:
		return "branch"
	default:
		return "unattached"
	}
}

// RoomOwner - владелец комнаты: квартира, филиал или никто.
// Строится один раз при чтении из источника, дальше код не проверяет пару nullable-ключей.
type RoomOwner struct {
	kind OwnerKind
	id   uuid.UUID
}

func OwnedByApartment(apartmentID uuid.UUID) RoomOwner {
	return RoomOwner{kind: OwnerApartment, id: apartmentID}
}

func OwnedByBranch(branchID uuid.UUID) RoomOwner {
	return RoomOwner{kind: OwnerBranch, id: branchID}
}

func Unattached() RoomOwner {
	return RoomOwner{kind: OwnerUnattached}
}

// NewRoomOwner строит владельца из пары внешних ключей.
// Заполнены оба или ни одного - комната считается непривязанной.
func NewRoomOwner(apartmentID, branchID *uuid.UUID) RoomOwner {
	hasApartment := apartmentID != nil && *apartmentID != uuid.Nil
	hasBranch := branchID != nil && *branchID != uuid.Nil

	switch {
	case hasApartment && !hasBranch:
		return OwnedByApartment(*apartmentID)
	case hasBranch && !hasApartment:
		return OwnedByBranch(*branchID)
	default:
		return Unattached()
	}
}

func (o RoomOwner) Kind() OwnerKind { return o.kind }

// ID возвращает идентификатор владельца; uuid.Nil для непривязанной комнаты.
func (o RoomOwner) ID() uuid.UUID { return o.id }

// ApartmentID возвращает ключ квартиры, если владелец - квартира.
func (o RoomOwner) ApartmentID() (uuid.UUID, bool) {
	return o.id, o.kind == OwnerApartment
}

// BranchID возвращает ключ филиала, если владелец - филиал.
func (o RoomOwner) BranchID() (uuid.UUID, bool) {
	return o.id, o.kind == OwnerBranch
}

// ForeignKeys раскладывает владельца обратно в пару nullable-колонок для записи.
func (o RoomOwner) ForeignKeys() (apartmentID, branchID *uuid.UUID) {
	id := o.id
	switch o.kind {
	case OwnerApartment:
		return &id, nil
	case OwnerBranch:
		return nil, &id
	default:
		return nil, nil
	}
}
