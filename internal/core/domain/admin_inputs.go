package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BranchInput - данные для создания/обновления филиала.
type BranchInput struct {
	Name      string
	City      string
	Address   string
	Latitude  *float64
	Longitude *float64
}

func (in BranchInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: branch name is required", ErrValidation)
	}
	if strings.TrimSpace(in.City) == "" {
		return fmt.Errorf("%w: branch city is required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: branch address is required", ErrValidation)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", ErrValidation)
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return fmt.Errorf("%w: latitude out of range", ErrValidation)
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return fmt.Errorf("%w: longitude out of range", ErrValidation)
	}
	return nil
}

// ApartmentInput - данные для создания/обновления квартиры.
type ApartmentInput struct {
	BranchID      uuid.UUID
	Name          string
	Description   string
	Bedrooms      int
	Bathrooms     int
	PricePerNight float64
	Image         string
	Images        []string
}

func (in ApartmentInput) Validate() error {
	if in.BranchID == uuid.Nil {
		return fmt.Errorf("%w: branch_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: apartment name is required", ErrValidation)
	}
	if in.Bedrooms < 0 || in.Bathrooms < 0 {
		return fmt.Errorf("%w: bedrooms and bathrooms cannot be negative", ErrValidation)
	}
	if in.PricePerNight < 0 {
		return fmt.Errorf("%w: price_per_night cannot be negative", ErrValidation)
	}
	return nil
}

// RoomInput - данные для создания/обновления комнаты.
type RoomInput struct {
	Owner         RoomOwner
	Name          string
	Capacity      int
	PricePerNight float64
	Image         string
	Images        []string
}

func (in RoomInput) Validate() error {
	if in.Owner.Kind() == OwnerUnattached {
		return fmt.Errorf("%w: room must belong to exactly one apartment or branch", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if in.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}
	if in.PricePerNight < 0 {
		return fmt.Errorf("%w: price_per_night cannot be negative", ErrValidation)
	}
	return nil
}

// ImageUpload - изображение, загружаемое в хранилище.
type ImageUpload struct {
	Folder      string
	FileName    string
	ContentType string
	Data        []byte
}

const (
	ImageFolderApartments = "apartments"
	ImageFolderRooms      = "rooms"
)
