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
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) (*PostgresProfileRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresProfileRepository{pool: pool}, nil
}

func (r *PostgresProfileRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresProfileRepository",
		"method":    "FindProfileByID",
		"user_id":   id,
	})

	var p domain.Profile
	err := r.pool.QueryRow(ctx, `SELECT id, email, role FROM profiles WHERE id = $1`, id).Scan(&p.ID, &p.Email, &p.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		repoLogger.Error("Failed to query profile", err, nil)
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}
