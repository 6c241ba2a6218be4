package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListingLoaderPort - загрузка и чтение агрегированного дерева.
type ListingLoaderPort interface {
	Load(ctx context.Context) (*domain.ListingSnapshot, error)
	Snapshot() domain.ListingSnapshot
}

type GetListingTreeUseCasePort interface {
	Execute(ctx context.Context) (*domain.ListingSnapshot, error)
}

type GetBranchUseCasePort interface {
	Execute(ctx context.Context, branchID uuid.UUID) (*domain.BranchNode, error)
}

type GetApartmentDetailsUseCasePort interface {
	Execute(ctx context.Context, apartmentID uuid.UUID) (*domain.ApartmentDetails, error)
}

type GetRoomDetailsUseCasePort interface {
	Execute(ctx context.Context, roomID uuid.UUID) (*domain.RoomDetails, error)
}

// BuildBookingLinkUseCasePort строит ссылку для квартиры или комнаты;
// без идентификаторов возвращается общая ссылка.
type BuildBookingLinkUseCasePort interface {
	Execute(ctx context.Context, apartmentID, roomID *uuid.UUID) (*domain.BookingLink, error)
}

type RefreshListingsUseCasePort interface {
	Execute(ctx context.Context, reason string) (*domain.ListingSnapshot, error)
}
