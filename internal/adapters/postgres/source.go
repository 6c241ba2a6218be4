package postgres_adapter

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	branchColumns = `b.id, b.name, b.city, b.address, b.latitude, b.longitude, b.created_at, b.updated_at`

	apartmentColumns = `a.id, a.branch_id, a.name, a.description, a.bedrooms, a.bathrooms,
		a.price_per_night::float8, a.image, a.images, a.created_at, a.updated_at`

	roomColumns = `r.id, r.apartment_id, r.branch_id, r.name, r.capacity,
		r.price_per_night::float8, r.image, r.images, r.created_at, r.updated_at`
)

// PostgresListingSource читает филиалы, квартиры и комнаты напрямую из БД.
type PostgresListingSource struct {
	pool *pgxpool.Pool
}

func NewPostgresListingSource(pool *pgxpool.Pool) (*PostgresListingSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresListingSource{pool: pool}, nil
}

func branchesQuery(filter domain.BranchFilter) (string, []any) {
	var w whereBuilder
	if filter.ID != nil {
		w.eq("b.id", *filter.ID)
	}
	return `SELECT ` + branchColumns + ` FROM branches b` + w.String() + ` ORDER BY b.created_at ASC, b.id ASC`, w.args
}

func apartmentsQuery(filter domain.ApartmentFilter) (string, []any) {
	var w whereBuilder
	if filter.ID != nil {
		w.eq("a.id", *filter.ID)
	}
	if filter.BranchID != nil {
		w.eq("a.branch_id", *filter.BranchID)
	}
	return `SELECT ` + apartmentColumns + `, COALESCE(b.name, '')
		FROM apartments a LEFT JOIN branches b ON b.id = a.branch_id` +
		w.String() + ` ORDER BY a.created_at ASC, a.id ASC`, w.args
}

func roomsQuery(filter domain.RoomFilter) (string, []any) {
	var w whereBuilder
	if filter.ID != nil {
		w.eq("r.id", *filter.ID)
	}
	if filter.ApartmentID != nil {
		w.eq("r.apartment_id", *filter.ApartmentID)
	}
	if filter.BranchID != nil {
		w.eq("r.branch_id", *filter.BranchID)
	}
	// Имя владельца: квартира или филиал; branch_name - филиал квартиры
	return `SELECT ` + roomColumns + `,
		COALESCE(a.name, rb.name, ''), COALESCE(ab.name, '')
		FROM rooms r
		LEFT JOIN apartments a ON a.id = r.apartment_id
		LEFT JOIN branches ab ON ab.id = a.branch_id
		LEFT JOIN branches rb ON rb.id = r.branch_id` +
		w.String() + ` ORDER BY r.created_at ASC, r.id ASC`, w.args
}

func (s *PostgresListingSource) FetchBranches(ctx context.Context, filter domain.BranchFilter) ([]domain.Branch, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingSource",
		"method":    "FetchBranches",
	})
	query, args := branchesQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query branches", err, nil)
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	branches, err := pgx.CollectRows(rows, scanBranch)
	if err != nil {
		repoLogger.Error("Failed to scan branches", err, nil)
		return nil, fmt.Errorf("failed to scan branches: %w", err)
	}
	repoLogger.Debug("Branches fetched", port.Fields{"count": len(branches)})
	return branches, nil
}

func (s *PostgresListingSource) FetchApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingSource",
		"method":    "FetchApartments",
	})
	query, args := apartmentsQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query apartments", err, nil)
		return nil, fmt.Errorf("failed to query apartments: %w", err)
	}
	apartments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Apartment, error) {
		return scanApartment(row, true)
	})
	if err != nil {
		repoLogger.Error("Failed to scan apartments", err, nil)
		return nil, fmt.Errorf("failed to scan apartments: %w", err)
	}
	repoLogger.Debug("Apartments fetched", port.Fields{"count": len(apartments)})
	return apartments, nil
}

func (s *PostgresListingSource) FetchRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingSource",
		"method":    "FetchRooms",
	})
	query, args := roomsQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query rooms", err, nil)
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Room, error) {
		return scanRoom(row, true)
	})
	if err != nil {
		repoLogger.Error("Failed to scan rooms", err, nil)
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
	}
	repoLogger.Debug("Rooms fetched", port.Fields{"count": len(rooms)})
	return rooms, nil
}

func scanBranch(row pgx.CollectableRow) (domain.Branch, error) {
	var b domain.Branch
	err := row.Scan(&b.ID, &b.Name, &b.City, &b.Address, &b.Latitude, &b.Longitude, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// scanApartment читает колонки apartmentColumns и, если withNames, имя филиала
func scanApartment(row pgx.Row, withNames bool) (domain.Apartment, error) {
	var a domain.Apartment
	var image *string
	dest := []any{&a.ID, &a.BranchID, &a.Name, &a.Description, &a.Bedrooms, &a.Bathrooms,
		&a.PricePerNight, &image, &a.Images, &a.CreatedAt, &a.UpdatedAt}
	if withNames {
		dest = append(dest, &a.BranchName)
	}
	if err := row.Scan(dest...); err != nil {
		return a, err
	}
	if image != nil {
		a.Image = *image
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	return a, nil
}

// scanRoom собирает владельца из пары nullable-ключей
func scanRoom(row pgx.Row, withNames bool) (domain.Room, error) {
	var r domain.Room
	var apartmentID, branchID *uuid.UUID
	var image *string
	dest := []any{&r.ID, &apartmentID, &branchID, &r.Name, &r.Capacity,
		&r.PricePerNight, &image, &r.Images, &r.CreatedAt, &r.UpdatedAt}
	if withNames {
		dest = append(dest, &r.OwnerName, &r.BranchName)
	}
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Owner = domain.NewRoomOwner(apartmentID, branchID)
	if image != nil {
		r.Image = *image
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return r, nil
}
