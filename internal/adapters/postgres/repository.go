package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresListingRepository - запись сущностей каталога из админки.
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresListingRepository(pool *pgxpool.Pool) (*PostgresListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresListingRepository{pool: pool}, nil
}

// mapWriteError переводит ошибки БД в доменные
func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced %s does not exist", domain.ErrValidation, pgErr.ConstraintName)
		case "23514": // check_violation
			return fmt.Errorf("%w: constraint %s violated", domain.ErrValidation, pgErr.ConstraintName)
		}
	}
	return err
}

func (r *PostgresListingRepository) ListBranchesByName(ctx context.Context) ([]domain.Branch, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "ListBranchesByName",
	})
	rows, err := r.pool.Query(ctx, `SELECT `+branchColumns+` FROM branches b ORDER BY b.name ASC`)
	if err != nil {
		repoLogger.Error("Failed to query branches", err, nil)
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	return pgx.CollectRows(rows, scanBranch)
}

func (r *PostgresListingRepository) CreateBranch(ctx context.Context, in domain.BranchInput) (*domain.Branch, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "CreateBranch",
	})
	query := `INSERT INTO branches AS b (name, city, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + branchColumns
	row := r.pool.QueryRow(ctx, query, in.Name, in.City, in.Address, in.Latitude, in.Longitude)
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, &b.City, &b.Address, &b.Latitude, &b.Longitude, &b.CreatedAt, &b.UpdatedAt); err != nil {
		repoLogger.Error("Failed to insert branch", err, nil)
		return nil, mapWriteError(err)
	}
	repoLogger.Debug("Branch inserted", port.Fields{"branch_id": b.ID})
	return &b, nil
}

func (r *PostgresListingRepository) UpdateBranch(ctx context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "UpdateBranch",
		"branch_id": id,
	})
	query := `UPDATE branches AS b
		SET name = $2, city = $3, address = $4, latitude = $5, longitude = $6, updated_at = now()
		WHERE b.id = $1
		RETURNING ` + branchColumns
	row := r.pool.QueryRow(ctx, query, id, in.Name, in.City, in.Address, in.Latitude, in.Longitude)
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, &b.City, &b.Address, &b.Latitude, &b.Longitude, &b.CreatedAt, &b.UpdatedAt); err != nil {
		repoLogger.Warn("Failed to update branch", port.Fields{"error": err.Error()})
		return nil, mapWriteError(err)
	}
	return &b, nil
}

func (r *PostgresListingRepository) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "branches", id)
}

func (r *PostgresListingRepository) CreateApartment(ctx context.Context, in domain.ApartmentInput) (*domain.Apartment, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "CreateApartment",
		"branch_id": in.BranchID,
	})
	query := `INSERT INTO apartments AS a (branch_id, name, description, bedrooms, bathrooms, price_per_night, image, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + apartmentColumns
	row := r.pool.QueryRow(ctx, query, in.BranchID, in.Name, in.Description, in.Bedrooms, in.Bathrooms,
		in.PricePerNight, nullableText(in.Image), imagesOrEmpty(in.Images))
	a, err := scanApartment(row, false)
	if err != nil {
		repoLogger.Error("Failed to insert apartment", err, nil)
		return nil, mapWriteError(err)
	}
	return &a, nil
}

func (r *PostgresListingRepository) UpdateApartment(ctx context.Context, id uuid.UUID, in domain.ApartmentInput) (*domain.Apartment, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "PostgresListingRepository",
		"method":       "UpdateApartment",
		"apartment_id": id,
	})
	query := `UPDATE apartments AS a
		SET branch_id = $2, name = $3, description = $4, bedrooms = $5, bathrooms = $6,
			price_per_night = $7, image = $8, images = $9, updated_at = now()
		WHERE a.id = $1
		RETURNING ` + apartmentColumns
	row := r.pool.QueryRow(ctx, query, id, in.BranchID, in.Name, in.Description, in.Bedrooms, in.Bathrooms,
		in.PricePerNight, nullableText(in.Image), imagesOrEmpty(in.Images))
	a, err := scanApartment(row, false)
	if err != nil {
		repoLogger.Warn("Failed to update apartment", port.Fields{"error": err.Error()})
		return nil, mapWriteError(err)
	}
	return &a, nil
}

func (r *PostgresListingRepository) DeleteApartment(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "apartments", id)
}

// CreateRoom пишет ровно один внешний ключ, второй - NULL
func (r *PostgresListingRepository) CreateRoom(ctx context.Context, in domain.RoomInput) (*domain.Room, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresListingRepository",
		"method":      "CreateRoom",
		"association": in.Owner.Kind().String(),
	})
	apartmentID, branchID := in.Owner.ForeignKeys()
	query := `INSERT INTO rooms AS r (apartment_id, branch_id, name, capacity, price_per_night, image, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + roomColumns
	row := r.pool.QueryRow(ctx, query, apartmentID, branchID, in.Name, in.Capacity,
		in.PricePerNight, nullableText(in.Image), imagesOrEmpty(in.Images))
	room, err := scanRoom(row, false)
	if err != nil {
		repoLogger.Error("Failed to insert room", err, nil)
		return nil, mapWriteError(err)
	}
	return &room, nil
}

func (r *PostgresListingRepository) UpdateRoom(ctx context.Context, id uuid.UUID, in domain.RoomInput) (*domain.Room, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "UpdateRoom",
		"room_id":   id,
	})
	apartmentID, branchID := in.Owner.ForeignKeys()
	query := `UPDATE rooms AS r
		SET apartment_id = $2, branch_id = $3, name = $4, capacity = $5,
			price_per_night = $6, image = $7, images = $8, updated_at = now()
		WHERE r.id = $1
		RETURNING ` + roomColumns
	row := r.pool.QueryRow(ctx, query, id, apartmentID, branchID, in.Name, in.Capacity,
		in.PricePerNight, nullableText(in.Image), imagesOrEmpty(in.Images))
	room, err := scanRoom(row, false)
	if err != nil {
		repoLogger.Warn("Failed to update room", port.Fields{"error": err.Error()})
		return nil, mapWriteError(err)
	}
	return &room, nil
}

func (r *PostgresListingRepository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "rooms", id)
}

// deleteByID - таблица берется только из констант выше
func (r *PostgresListingRepository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "Delete",
		"table":     table,
		"id":        id,
	})
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to delete row", err, nil)
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Attempted to delete a row that did not exist.", nil)
		return domain.ErrNotFound
	}
	repoLogger.Debug("Row deleted", nil)
	return nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
