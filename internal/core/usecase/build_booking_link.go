package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	whatsAppBaseURL = "https://wa.me/"

	generalBookingMessage = "Hi! I want to know more about availability."
)

// BookingLinkBuilder формирует ссылки на чат WhatsApp.
type BookingLinkBuilder struct {
	phone string
}

// NewBookingLinkBuilder оставляет в номере только цифры.
func NewBookingLinkBuilder(phone string) (*BookingLinkBuilder, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return nil, fmt.Errorf("whatsapp number cannot be empty")
	}
	return &BookingLinkBuilder{phone: digits}, nil
}

func (b *BookingLinkBuilder) link(target domain.BookingTarget, message string) domain.BookingLink {
	return domain.BookingLink{
		Target:  target,
		Message: message,
		URL:     whatsAppBaseURL + b.phone + "?text=" + encodeMessage(message),
	}
}

func (b *BookingLinkBuilder) General() domain.BookingLink {
	return b.link(domain.BookingGeneral, generalBookingMessage)
}

func (b *BookingLinkBuilder) ForApartment(apartmentName, branchName string) domain.BookingLink {
	msg := fmt.Sprintf("Hello! I want to book the entire apartment \"%s\" at %s branch.", apartmentName, branchName)
	return b.link(domain.BookingApartment, msg)
}

func (b *BookingLinkBuilder) ForApartmentRoom(roomName, apartmentName, branchName string) domain.BookingLink {
	msg := fmt.Sprintf("Hello! I want to book the room \"%s\" in \"%s\" at %s branch.", roomName, apartmentName, branchName)
	return b.link(domain.BookingApartmentRoom, msg)
}

func (b *BookingLinkBuilder) ForBranchRoom(roomName, location string) domain.BookingLink {
	msg := fmt.Sprintf("Hello! I want to book the room \"%s\" at %s.", roomName, location)
	return b.link(domain.BookingBranchRoom, msg)
}

// ForRoom выбирает шаблон по владельцу комнаты.
func (b *BookingLinkBuilder) ForRoom(room domain.Room, apartmentName, branchName string) domain.BookingLink {
	if room.Owner.Kind() == domain.OwnerApartment {
		return b.ForApartmentRoom(room.Name, apartmentName, branchName)
	}
	return b.ForBranchRoom(room.Name, branchName)
}

type BuildBookingLinkUseCase struct {
	links      *BookingLinkBuilder
	apartments usecases_port.GetApartmentDetailsUseCasePort
	rooms      usecases_port.GetRoomDetailsUseCasePort
}

func NewBuildBookingLinkUseCase(
	links *BookingLinkBuilder,
	apartments usecases_port.GetApartmentDetailsUseCasePort,
	rooms usecases_port.GetRoomDetailsUseCasePort,
) *BuildBookingLinkUseCase {
	return &BuildBookingLinkUseCase{links: links, apartments: apartments, rooms: rooms}
}

// Execute: комната важнее квартиры, без идентификаторов - общая ссылка.
func (uc *BuildBookingLinkUseCase) Execute(ctx context.Context, apartmentID, roomID *uuid.UUID) (*domain.BookingLink, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "BuildBookingLink",
	})

	switch {
	case roomID != nil:
		details, err := uc.rooms.Execute(ctx, *roomID)
		if err != nil {
			return nil, err
		}
		ucLogger.Info("Room booking link built", port.Fields{"room_id": *roomID})
		return &details.BookingLink, nil
	case apartmentID != nil:
		details, err := uc.apartments.Execute(ctx, *apartmentID)
		if err != nil {
			return nil, err
		}
		ucLogger.Info("Apartment booking link built", port.Fields{"apartment_id": *apartmentID})
		return &details.BookingLink, nil
	default:
		link := uc.links.General()
		return &link, nil
	}
}

// encodeMessage кодирует текст как encodeURIComponent: пробел - %20, не "+".
func encodeMessage(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
