package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// ListingSourcePort - контракт удаленного источника данных (БД или REST-интерфейс хостинга).
// Все методы возвращают записи, отсортированные по created_at по возрастанию.
type ListingSourcePort interface {
	FetchBranches(ctx context.Context, filter domain.BranchFilter) ([]domain.Branch, error)
	// FetchApartments заполняет BranchName, если источник это умеет.
	FetchApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error)
	// FetchRooms строит владельца комнаты и заполняет OwnerName/BranchName.
	FetchRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
}
