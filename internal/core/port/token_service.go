package port

import (
	"context"

	"github.com/google/uuid"
)

// TokenClaims - данные, извлеченные из проверенного токена.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// TokenServicePort проверяет токены доступа админки.
type TokenServicePort interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}
