package domain

import "github.com/google/uuid"

// BranchFilter - фильтр выборки филиалов. Пустой фильтр - все записи.
type BranchFilter struct {
	ID *uuid.UUID
}

// ApartmentFilter - фильтр выборки квартир.
type ApartmentFilter struct {
	ID       *uuid.UUID
	BranchID *uuid.UUID
}

// RoomFilter - фильтр выборки комнат.
type RoomFilter struct {
	ID          *uuid.UUID
	ApartmentID *uuid.UUID
	BranchID    *uuid.UUID
}
