package domain

import "github.com/google/uuid"

// BookingTarget - что именно бронируется.
type BookingTarget string

const (
	BookingGeneral       BookingTarget = "general"
	BookingApartment     BookingTarget = "apartment"
	BookingApartmentRoom BookingTarget = "apartment_room"
	BookingBranchRoom    BookingTarget = "branch_room"
)

// BookingLink - ссылка на чат WhatsApp с заранее подготовленным сообщением.
type BookingLink struct {
	Target  BookingTarget
	Message string
	URL     string
}

// ApartmentDetails - квартира с комнатами и ссылками на бронирование.
type ApartmentDetails struct {
	Apartment   Apartment
	BranchName  string
	Rooms       []Room
	BookingLink BookingLink
	RoomLinks   map[uuid.UUID]BookingLink
}

// RoomDetails - комната с названием локации и ссылкой на бронирование.
type RoomDetails struct {
	Room         Room
	LocationName string
	BookingLink  BookingLink
}
