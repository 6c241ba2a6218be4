package rest

import (
	"listing-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// --- Ответы публичного API ---

type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ApartmentResponse struct {
	ID            uuid.UUID `json:"id"`
	BranchID      uuid.UUID `json:"branch_id"`
	BranchName    string    `json:"branch_name,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	PricePerNight float64   `json:"price_per_night"`
	Image         string    `json:"image,omitempty"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RoomResponse struct {
	ID            uuid.UUID  `json:"id"`
	Association   string     `json:"association"`
	ApartmentID   *uuid.UUID `json:"apartment_id"`
	BranchID      *uuid.UUID `json:"branch_id"`
	Name          string     `json:"name"`
	Capacity      int        `json:"capacity"`
	PricePerNight float64    `json:"price_per_night"`
	Image         string     `json:"image,omitempty"`
	Images        []string   `json:"images"`
	OwnerName     string     `json:"owner_name,omitempty"`
	BranchName    string     `json:"branch_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ApartmentNodeResponse struct {
	ApartmentResponse
	Rooms []RoomResponse `json:"rooms"`
}

type BranchNodeResponse struct {
	BranchResponse
	Geohash    string                  `json:"geohash,omitempty"`
	Apartments []ApartmentNodeResponse `json:"apartments"`
	Rooms      []RoomResponse          `json:"rooms"`
}

type ListingsResponse struct {
	Status   string               `json:"status"`
	Loading  bool                 `json:"loading"`
	Sequence uint64               `json:"sequence"`
	LoadedAt *time.Time           `json:"loaded_at"`
	Errors   map[string]string    `json:"errors"`
	Branches []BranchNodeResponse `json:"branches"`
}

type BookingLinkResponse struct {
	Target  string `json:"target"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

type RoomWithLinkResponse struct {
	RoomResponse
	BookingLink *BookingLinkResponse `json:"booking_link,omitempty"`
}

type ApartmentDetailsResponse struct {
	Apartment   ApartmentResponse      `json:"apartment"`
	BranchName  string                 `json:"branch_name"`
	Rooms       []RoomWithLinkResponse `json:"rooms"`
	BookingLink BookingLinkResponse    `json:"booking_link"`
}

type RoomDetailsResponse struct {
	Room         RoomResponse        `json:"room"`
	LocationName string              `json:"location_name"`
	BookingLink  BookingLinkResponse `json:"booking_link"`
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}

func toBranchResponse(b domain.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		City:      b.City,
		Address:   b.Address,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toApartmentResponse(a domain.Apartment) ApartmentResponse {
	return ApartmentResponse{
		ID:            a.ID,
		BranchID:      a.BranchID,
		BranchName:    a.BranchName,
		Name:          a.Name,
		Description:   a.Description,
		Bedrooms:      a.Bedrooms,
		Bathrooms:     a.Bathrooms,
		PricePerNight: a.PricePerNight,
		Image:         a.Image,
		Images:        nonNilStrings(a.Images),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toRoomResponse(r domain.Room) RoomResponse {
	apartmentID, branchID := r.Owner.ForeignKeys()
	return RoomResponse{
		ID:            r.ID,
		Association:   r.Owner.Kind().String(),
		ApartmentID:   apartmentID,
		BranchID:      branchID,
		Name:          r.Name,
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
		Image:         r.Image,
		Images:        nonNilStrings(r.Images),
		OwnerName:     r.OwnerName,
		BranchName:    r.BranchName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRoomResponses(rooms []domain.Room) []RoomResponse {
	out := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		out[i] = toRoomResponse(r)
	}
	return out
}

func toBranchNodeResponse(node domain.BranchNode) BranchNodeResponse {
	apartments := make([]ApartmentNodeResponse, len(node.Apartments))
	for i, a := range node.Apartments {
		apartments[i] = ApartmentNodeResponse{
			ApartmentResponse: toApartmentResponse(a.Apartment),
			Rooms:             toRoomResponses(a.Rooms),
		}
	}
	return BranchNodeResponse{
		BranchResponse: toBranchResponse(node.Branch),
		Geohash:        node.Geohash,
		Apartments:     apartments,
		Rooms:          toRoomResponses(node.Rooms),
	}
}

func toListingsResponse(s domain.ListingSnapshot) ListingsResponse {
	resp := ListingsResponse{
		Status:   string(s.Status),
		Loading:  s.Loading,
		Sequence: s.Sequence,
		Errors:   make(map[string]string, len(s.Errors)),
		Branches: make([]BranchNodeResponse, len(s.Tree.Branches)),
	}
	if !s.LoadedAt.IsZero() {
		loadedAt := s.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	for resource, resErr := range s.Errors {
		if resErr != nil {
			resp.Errors[string(resource)] = resErr.Message
		}
	}
	for i, node := range s.Tree.Branches {
		resp.Branches[i] = toBranchNodeResponse(node)
	}
	return resp
}

func toBookingLinkResponse(l domain.BookingLink) BookingLinkResponse {
	return BookingLinkResponse{Target: string(l.Target), Message: l.Message, URL: l.URL}
}

func toApartmentDetailsResponse(d domain.ApartmentDetails) ApartmentDetailsResponse {
	rooms := make([]RoomWithLinkResponse, len(d.Rooms))
	for i, r := range d.Rooms {
		rooms[i] = RoomWithLinkResponse{RoomResponse: toRoomResponse(r)}
		if link, ok := d.RoomLinks[r.ID]; ok {
			l := toBookingLinkResponse(link)
			rooms[i].BookingLink = &l
		}
	}
	return ApartmentDetailsResponse{
		Apartment:   toApartmentResponse(d.Apartment),
		BranchName:  d.BranchName,
		Rooms:       rooms,
		BookingLink: toBookingLinkResponse(d.BookingLink),
	}
}

func toRoomDetailsResponse(d domain.RoomDetails) RoomDetailsResponse {
	return RoomDetailsResponse{
		Room:         toRoomResponse(d.Room),
		LocationName: d.LocationName,
		BookingLink:  toBookingLinkResponse(d.BookingLink),
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Запросы админки ---

type BranchRequest struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r BranchRequest) toDomain() domain.BranchInput {
	return domain.BranchInput{
		Name:      r.Name,
		City:      r.City,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type ApartmentRequest struct {
	BranchID      uuid.UUID `json:"branch_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	PricePerNight float64   `json:"price_per_night"`
	Image         *string   `json:"image"`
	Images        []string  `json:"images"`
}

func (r ApartmentRequest) toDomain() domain.ApartmentInput {
	in := domain.ApartmentInput{
		BranchID:      r.BranchID,
		Name:          r.Name,
		Description:   r.Description,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		PricePerNight: r.PricePerNight,
		Images:        r.Images,
	}
	if r.Image != nil {
		in.Image = *r.Image
	}
	return in
}

// RoomRequest - комната привязывается либо к квартире, либо к филиалу.
// Ключ другой стороны игнорируется и записывается как NULL.
type RoomRequest struct {
	Association   string     `json:"association"`
	ApartmentID   *uuid.UUID `json:"apartment_id"`
	BranchID      *uuid.UUID `json:"branch_id"`
	Name          string     `json:"name"`
	Capacity      int        `json:"capacity"`
	PricePerNight float64    `json:"price_per_night"`
	Image         *string    `json:"image"`
	Images        []string   `json:"images"`
}

func (r RoomRequest) toDomain() domain.RoomInput {
	owner := domain.Unattached()
	switch r.Association {
	case domain.OwnerApartment.String():
		if r.ApartmentID != nil {
			owner = domain.OwnedByApartment(*r.ApartmentID)
		}
	case domain.OwnerBranch.String():
		if r.BranchID != nil {
			owner = domain.OwnedByBranch(*r.BranchID)
		}
	}
	in := domain.RoomInput{
		Owner:         owner,
		Name:          r.Name,
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
		Images:        r.Images,
	}
	if r.Image != nil {
		in.Image = *r.Image
	}
	return in
}
