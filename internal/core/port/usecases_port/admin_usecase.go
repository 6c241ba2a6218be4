package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

type ManageBranchesUseCasePort interface {
	List(ctx context.Context) ([]domain.Branch, error)
	Create(ctx context.Context, in domain.BranchInput) (*domain.Branch, error)
	Update(ctx context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ManageApartmentsUseCasePort interface {
	List(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error)
	Create(ctx context.Context, in domain.ApartmentInput) (*domain.Apartment, error)
	Update(ctx context.Context, id uuid.UUID, in domain.ApartmentInput) (*domain.Apartment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ManageRoomsUseCasePort interface {
	List(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
	Create(ctx context.Context, in domain.RoomInput) (*domain.Room, error)
	Update(ctx context.Context, id uuid.UUID, in domain.RoomInput) (*domain.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UploadImageUseCasePort interface {
	// Возвращает публичный URL загруженного изображения
	Execute(ctx context.Context, upload domain.ImageUpload) (string, error)
}

type AuthorizeAdminUseCasePort interface {
	Execute(ctx context.Context, token string) (*domain.Profile, error)
}

// HandleListingChangedUseCasePort - реакция на событие об изменении каталога.
type HandleListingChangedUseCasePort interface {
	Execute(ctx context.Context, event domain.ListingChangedEvent) error
}
