package domain

import (
	"time"

	"github.com/google/uuid"
)

// Branch - физическая локация, в которой находятся квартиры и/или комнаты.
type Branch struct {
	ID        uuid.UUID
	Name      string
	City      string
	Address   string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCoordinates сообщает, заданы ли обе координаты.
func (b Branch) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Apartment - квартира внутри филиала. Бронируется целиком или по комнатам.
type Apartment struct {
	ID            uuid.UUID
	BranchID      uuid.UUID
	Name          string
	Description   string
	Bedrooms      int
	Bathrooms     int
	PricePerNight float64
	Image         string
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// BranchName заполняется, если источник вернул имя филиала вместе с квартирой
	BranchName string
}

// Room - минимальная единица бронирования.
type Room struct {
	ID            uuid.UUID
	Owner         RoomOwner
	Name          string
	Capacity      int
	PricePerNight float64
	Image         string
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// OwnerName - имя квартиры или филиала-владельца (если источник его вернул)
	OwnerName string
	// BranchName - имя филиала квартиры-владельца (только для комнат в квартирах)
	BranchName string
}

// Profile - запись профиля пользователя админки.
type Profile struct {
	ID    uuid.UUID
	Email string
	Role  string
}

const RoleAdmin = "admin"

// IsAdmin проверяет, есть ли у профиля доступ к админке.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
