package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBodyBytes = 1 << 20

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// writeDomainError переводит доменную ошибку в HTTP-статус.
// Текст внутренних ошибок наружу не отдается.
func writeDomainError(w http.ResponseWriter, logger port.LoggerPort, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error(fallbackMessage, err, nil)
		WriteJSONError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.Error(fallbackMessage, err, nil)
		WriteJSONError(w, http.StatusInternalServerError, fallbackMessage)
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s format", domain.ErrValidation, name)
	}
	return id, nil
}

// parseOptionalUUIDQuery возвращает nil, если параметр не передан
func parseOptionalUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s format", domain.ErrValidation, name)
	}
	return &id, nil
}

// decodeValidated читает тело, проверяет его по JSON-схеме и раскладывает в dst
func decodeValidated(r *http.Request, schemaKey string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxJSONBodyBytes {
		return fmt.Errorf("%w: request body too large", domain.ErrValidation)
	}
	if err := contracts.Validate(schemaKey, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}
