package port

import (
	"context"
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListingRepositoryPort - контракт для записи сущностей из админки.
// Удаление отсутствующей записи возвращает domain.ErrNotFound.
type ListingRepositoryPort interface {
	ListBranchesByName(ctx context.Context) ([]domain.Branch, error)
	CreateBranch(ctx context.Context, in domain.BranchInput) (*domain.Branch, error)
	UpdateBranch(ctx context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error)
	DeleteBranch(ctx context.Context, id uuid.UUID) error

	CreateApartment(ctx context.Context, in domain.ApartmentInput) (*domain.Apartment, error)
	UpdateApartment(ctx context.Context, id uuid.UUID, in domain.ApartmentInput) (*domain.Apartment, error)
	DeleteApartment(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, in domain.RoomInput) (*domain.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, in domain.RoomInput) (*domain.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

// ProfileRepositoryPort - чтение профилей пользователей админки.
type ProfileRepositoryPort interface {
	FindProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}
