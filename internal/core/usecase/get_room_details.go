package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type GetRoomDetailsUseCase struct {
	source port.ListingSourcePort
	links  *BookingLinkBuilder
}

func NewGetRoomDetailsUseCase(source port.ListingSourcePort, links *BookingLinkBuilder) *GetRoomDetailsUseCase {
	return &GetRoomDetailsUseCase{source: source, links: links}
}

func (uc *GetRoomDetailsUseCase) Execute(ctx context.Context, roomID uuid.UUID) (*domain.RoomDetails, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetRoomDetails",
		"room_id":  roomID,
	})
	ucLogger.Info("Use case started", nil)

	rooms, err := uc.source.FetchRooms(ctx, domain.RoomFilter{ID: &roomID})
	if err != nil {
		ucLogger.Error("Failed to fetch room", err, nil)
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
	}
	room := rooms[0]

	var details *domain.RoomDetails
	switch room.Owner.Kind() {
	case domain.OwnerApartment:
		details, err = uc.apartmentRoom(ctx, room)
	case domain.OwnerBranch:
		details, err = uc.branchRoom(ctx, room)
	default:
		ucLogger.Warn("Room has no resolvable owner", nil)
		return nil, fmt.Errorf("room %s is unattached: %w", roomID, domain.ErrNotFound)
	}
	if err != nil {
		ucLogger.Error("Failed to resolve room owner", err, port.Fields{"owner_kind": room.Owner.Kind().String()})
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"location": details.LocationName})
	return details, nil
}

func (uc *GetRoomDetailsUseCase) apartmentRoom(ctx context.Context, room domain.Room) (*domain.RoomDetails, error) {
	apartmentName, branchName := room.OwnerName, room.BranchName
	if apartmentName == "" || branchName == "" {
		apartmentID, _ := room.Owner.ApartmentID()
		apartments, err := uc.source.FetchApartments(ctx, domain.ApartmentFilter{ID: &apartmentID})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch owning apartment: %w", err)
		}
		if len(apartments) == 0 {
			return nil, fmt.Errorf("apartment %s: %w", apartmentID, domain.ErrNotFound)
		}
		apartmentName = apartments[0].Name
		branchName = apartments[0].BranchName
		if branchName == "" {
			branchName, err = uc.branchName(ctx, apartments[0].BranchID)
			if err != nil {
				return nil, err
			}
		}
	}

	return &domain.RoomDetails{
		Room:         room,
		LocationName: apartmentName + ", " + branchName,
		BookingLink:  uc.links.ForApartmentRoom(room.Name, apartmentName, branchName),
	}, nil
}

func (uc *GetRoomDetailsUseCase) branchRoom(ctx context.Context, room domain.Room) (*domain.RoomDetails, error) {
	name := room.OwnerName
	if name == "" {
		branchID, _ := room.Owner.BranchID()
		var err error
		name, err = uc.branchName(ctx, branchID)
		if err != nil {
			return nil, err
		}
	}
	return &domain.RoomDetails{
		Room:         room,
		LocationName: name,
		BookingLink:  uc.links.ForBranchRoom(room.Name, name),
	}, nil
}

func (uc *GetRoomDetailsUseCase) branchName(ctx context.Context, id uuid.UUID) (string, error) {
	branches, err := uc.source.FetchBranches(ctx, domain.BranchFilter{ID: &id})
	if err != nil {
		return "", fmt.Errorf("failed to fetch branch: %w", err)
	}
	if len(branches) == 0 {
		return "", fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}
	return branches[0].Name, nil
}
