package token_adapter

import (
	"context"
	"errors"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("token is invalid")

// TokenService проверяет HS256-токены админки.
type TokenService struct {
	signingKey []byte
}

func NewTokenService(signingKey string) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{signingKey: []byte(signingKey)}, nil
}

// Токены хостинга кладут идентификатор пользователя в sub,
// собственные токены сервиса - в user_id.
type jwtCustomClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (c *jwtCustomClaims) userID() (uuid.UUID, error) {
	raw := c.UserID
	if raw == "" {
		raw = c.Subject
	}
	return uuid.Parse(raw)
}

func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*port.TokenClaims, error) {
	serviceLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "ValidateToken",
	})

	claims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			serviceLogger.Warn("Token has expired", port.Fields{"email": claims.Email})
		} else {
			serviceLogger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := claims.userID()
	if err != nil {
		serviceLogger.Warn("Token subject is not a valid user id", nil)
		return nil, ErrTokenInvalid
	}

	serviceLogger.Debug("Token validated successfully.", port.Fields{"user_id": userID.String()})
	return &port.TokenClaims{UserID: userID, Email: claims.Email}, nil
}
