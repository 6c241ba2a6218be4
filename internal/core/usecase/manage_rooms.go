package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"strings"

	"github.com/google/uuid"
)

type ManageRoomsUseCase struct {
	repo   port.ListingRepositoryPort
	source port.ListingSourcePort
	events port.ListingEventsPort
}

func NewManageRoomsUseCase(repo port.ListingRepositoryPort, source port.ListingSourcePort, events port.ListingEventsPort) *ManageRoomsUseCase {
	return &ManageRoomsUseCase{repo: repo, source: source, events: events}
}

func normalizeRoomInput(in domain.RoomInput) domain.RoomInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Images = compactImages(in.Images)
	if in.Image == "" && len(in.Images) > 0 {
		in.Image = in.Images[0]
	}
	return in
}

func (uc *ManageRoomsUseCase) List(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	rooms, err := uc.source.FetchRooms(ctx, filter)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list rooms", err, port.Fields{"use_case": "ListRooms"})
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (uc *ManageRoomsUseCase) Create(ctx context.Context, in domain.RoomInput) (*domain.Room, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "CreateRoom",
		"association": in.Owner.Kind().String(),
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeRoomInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid room input", port.Fields{"error": err.Error()})
		return nil, err
	}

	room, err := uc.repo.CreateRoom(ctx, in)
	if err != nil {
		ucLogger.Error("Failed to create room", err, nil)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityRoom, domain.ActionCreated, room.ID)
	ucLogger.Info("Use case finished successfully", port.Fields{"room_id": room.ID})
	return room, nil
}

func (uc *ManageRoomsUseCase) Update(ctx context.Context, id uuid.UUID, in domain.RoomInput) (*domain.Room, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "UpdateRoom",
		"room_id":     id,
		"association": in.Owner.Kind().String(),
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeRoomInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid room input", port.Fields{"error": err.Error()})
		return nil, err
	}

	room, err := uc.repo.UpdateRoom(ctx, id, in)
	if err != nil {
		ucLogger.Error("Failed to update room", err, nil)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityRoom, domain.ActionUpdated, id)
	ucLogger.Info("Use case finished successfully", nil)
	return room, nil
}

func (uc *ManageRoomsUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "DeleteRoom",
		"room_id":  id,
	})
	ucLogger.Info("Use case started", nil)

	if err := uc.repo.DeleteRoom(ctx, id); err != nil {
		ucLogger.Error("Failed to delete room", err, nil)
		return fmt.Errorf("failed to delete room: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityRoom, domain.ActionDeleted, id)
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
