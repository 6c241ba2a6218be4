package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
)

type GetListingTreeUseCase struct {
	loader usecases_port.ListingLoaderPort
}

func NewGetListingTreeUseCase(loader usecases_port.ListingLoaderPort) *GetListingTreeUseCase {
	return &GetListingTreeUseCase{loader: loader}
}

// Execute возвращает текущий снимок; первый запрос к пустому агрегатору запускает загрузку.
func (uc *GetListingTreeUseCase) Execute(ctx context.Context) (*domain.ListingSnapshot, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetListingTree",
	})

	snapshot := uc.loader.Snapshot()
	if snapshot.Status != domain.StatusIdle {
		ucLogger.Debug("Serving current snapshot", port.Fields{"status": snapshot.Status, "sequence": snapshot.Sequence})
		return &snapshot, nil
	}

	ucLogger.Info("Aggregator is idle, triggering first load", nil)
	loaded, err := uc.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLoadSuperseded) {
			// Параллельный запрос уже применил более свежие данные
			current := uc.loader.Snapshot()
			return &current, nil
		}
		ucLogger.Error("Failed to load listings", err, nil)
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return loaded, nil
}
