package postgrest_client

import (
	"listing-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// Колонки и встроенные связи, которые запрашиваются у REST-интерфейса
const (
	branchSelect    = "id,name,city,address,latitude,longitude,created_at,updated_at"
	apartmentSelect = "id,branch_id,name,description,bedrooms,bathrooms,price_per_night,image,images,created_at,updated_at,branches(name)"
	roomSelect      = "id,apartment_id,branch_id,name,capacity,price_per_night,image,images,created_at,updated_at,apartments(name,branches(name)),branches(name)"
)

type nameRef struct {
	Name string `json:"name"`
}

type apartmentRef struct {
	Name     string   `json:"name"`
	Branches *nameRef `json:"branches"`
}

type branchRow struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type apartmentRow struct {
	ID            uuid.UUID `json:"id"`
	BranchID      uuid.UUID `json:"branch_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	PricePerNight float64   `json:"price_per_night"`
	Image         *string   `json:"image"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Branches      *nameRef  `json:"branches"`
}

type roomRow struct {
	ID            uuid.UUID     `json:"id"`
	ApartmentID   *uuid.UUID    `json:"apartment_id"`
	BranchID      *uuid.UUID    `json:"branch_id"`
	Name          string        `json:"name"`
	Capacity      int           `json:"capacity"`
	PricePerNight float64       `json:"price_per_night"`
	Image         *string       `json:"image"`
	Images        []string      `json:"images"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Apartments    *apartmentRef `json:"apartments"`
	Branches      *nameRef      `json:"branches"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func (r branchRow) toDomain() domain.Branch {
	return domain.Branch{
		ID:        r.ID,
		Name:      r.Name,
		City:      r.City,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r apartmentRow) toDomain() domain.Apartment {
	a := domain.Apartment{
		ID:            r.ID,
		BranchID:      r.BranchID,
		Name:          r.Name,
		Description:   deref(r.Description),
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		PricePerNight: r.PricePerNight,
		Image:         deref(r.Image),
		Images:        nonNilImages(r.Images),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Branches != nil {
		a.BranchName = r.Branches.Name
	}
	return a
}

func (r roomRow) toDomain() domain.Room {
	room := domain.Room{
		ID:            r.ID,
		Owner:         domain.NewRoomOwner(r.ApartmentID, r.BranchID),
		Name:          r.Name,
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
		Image:         deref(r.Image),
		Images:        nonNilImages(r.Images),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	switch {
	case r.Apartments != nil:
		room.OwnerName = r.Apartments.Name
		if r.Apartments.Branches != nil {
			room.BranchName = r.Apartments.Branches.Name
		}
	case r.Branches != nil:
		room.OwnerName = r.Branches.Name
	}
	return room
}
