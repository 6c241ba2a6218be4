package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApartmentNode - квартира вместе со своими комнатами.
type ApartmentNode struct {
	Apartment
	Rooms []Room
}

// BranchNode - филиал с квартирами и комнатами, привязанными к нему напрямую.
type BranchNode struct {
	Branch
	Geohash    string
	Apartments []ApartmentNode
	Rooms      []Room
}

// ListingTree - готовое к отображению дерево филиалов.
type ListingTree struct {
	Branches []BranchNode
}

// FindBranch ищет филиал в дереве.
func (t ListingTree) FindBranch(id uuid.UUID) (*BranchNode, bool) {
	for i := range t.Branches {
		if t.Branches[i].ID == id {
			return &t.Branches[i], true
		}
	}
	return nil, false
}

// RoomCount - общее число комнат в дереве.
func (t ListingTree) RoomCount() int {
	total := 0
	for _, b := range t.Branches {
		total += len(b.Rooms)
		for _, a := range b.Apartments {
			total += len(a.Rooms)
		}
	}
	return total
}

// ApartmentCount - общее число квартир в дереве.
func (t ListingTree) ApartmentCount() int {
	total := 0
	for _, b := range t.Branches {
		total += len(b.Apartments)
	}
	return total
}

// Resource - одна из трех независимо загружаемых коллекций.
type Resource string

const (
	ResourceBranches   Resource = "branches"
	ResourceApartments Resource = "apartments"
	ResourceRooms      Resource = "rooms"
)

// Resources перечисляет коллекции в фиксированном порядке.
var Resources = []Resource{ResourceBranches, ResourceApartments, ResourceRooms}

// ResourceError - ошибка загрузки одной коллекции.
type ResourceError struct {
	Resource Resource
	Message  string
}

func (e *ResourceError) Error() string {
	return string(e.Resource) + ": " + e.Message
}

// LoadStatus - состояние агрегатора.
type LoadStatus string

const (
	StatusIdle            LoadStatus = "idle"
	StatusLoading         LoadStatus = "loading"
	StatusReady           LoadStatus = "ready"
	StatusPartiallyFailed LoadStatus = "partially_failed"
)

// ListingSnapshot - состояние агрегатора на момент чтения.
type ListingSnapshot struct {
	Tree     ListingTree
	Status   LoadStatus
	Loading  bool
	Errors   map[Resource]*ResourceError
	Sequence uint64
	LoadedAt time.Time
}

// ErrorFor возвращает ошибку коллекции или nil.
func (s ListingSnapshot) ErrorFor(r Resource) *ResourceError {
	if s.Errors == nil {
		return nil
	}
	return s.Errors[r]
}
