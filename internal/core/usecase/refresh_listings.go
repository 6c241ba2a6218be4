package usecase

import (
	"context"
	"errors"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
)

type RefreshListingsUseCase struct {
	loader usecases_port.ListingLoaderPort
}

func NewRefreshListingsUseCase(loader usecases_port.ListingLoaderPort) *RefreshListingsUseCase {
	return &RefreshListingsUseCase{loader: loader}
}

// Execute принудительно перезагружает дерево.
// Если загрузку обогнал более новый запрос, возвращается уже примененный снимок.
func (uc *RefreshListingsUseCase) Execute(ctx context.Context, reason string) (*domain.ListingSnapshot, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "RefreshListings",
		"reason":   reason,
	})
	ucLogger.Info("Use case started", nil)

	snapshot, err := uc.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLoadSuperseded) {
			current := uc.loader.Snapshot()
			return &current, nil
		}
		ucLogger.Warn("Refresh did not complete", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"status": snapshot.Status})
	return snapshot, nil
}

// HandleListingChangedUseCase обновляет дерево по событию из очереди.
type HandleListingChangedUseCase struct {
	refresh usecases_port.RefreshListingsUseCasePort
}

func NewHandleListingChangedUseCase(refresh usecases_port.RefreshListingsUseCasePort) *HandleListingChangedUseCase {
	return &HandleListingChangedUseCase{refresh: refresh}
}

func (uc *HandleListingChangedUseCase) Execute(ctx context.Context, event domain.ListingChangedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	logger.WithFields(port.Fields{
		"use_case": "HandleListingChanged",
		"entity":   event.Entity,
		"action":   event.Action,
		"id":       event.ID,
	}).Info("Listing change received", nil)

	// Фото само по себе дерево не меняет, ссылка на него придет вместе с квартирой/комнатой
	if event.Entity == domain.EntityImage {
		return nil
	}

	_, err := uc.refresh.Execute(ctx, string(event.Entity)+"."+string(event.Action))
	return err
}
