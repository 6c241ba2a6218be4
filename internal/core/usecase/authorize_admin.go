package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type AuthorizeAdminUseCase struct {
	tokenSvc port.TokenServicePort
	profiles port.ProfileRepositoryPort
}

func NewAuthorizeAdminUseCase(tokenSvc port.TokenServicePort, profiles port.ProfileRepositoryPort) *AuthorizeAdminUseCase {
	return &AuthorizeAdminUseCase{tokenSvc: tokenSvc, profiles: profiles}
}

// Execute проверяет токен и роль admin в таблице профилей.
func (uc *AuthorizeAdminUseCase) Execute(ctx context.Context, token string) (*domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "AuthorizeAdmin",
	})

	claims, err := uc.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		ucLogger.Warn("Token validation failed", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	profile, err := uc.profiles.FindProfileByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ucLogger.Warn("Profile not found for token subject", port.Fields{"user_id": claims.UserID})
			return nil, fmt.Errorf("%w: no profile for user", domain.ErrForbidden)
		}
		ucLogger.Error("Failed to load profile", err, port.Fields{"user_id": claims.UserID})
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.IsAdmin() {
		ucLogger.Warn("Access denied: user is not an admin", port.Fields{"user_id": profile.ID, "role": profile.Role})
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}

	ucLogger.Debug("Admin authorized", port.Fields{"user_id": profile.ID})
	return profile, nil
}
