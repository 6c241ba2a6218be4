package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"strings"

	"github.com/google/uuid"
)

type ManageApartmentsUseCase struct {
	repo   port.ListingRepositoryPort
	source port.ListingSourcePort
	events port.ListingEventsPort
}

func NewManageApartmentsUseCase(repo port.ListingRepositoryPort, source port.ListingSourcePort, events port.ListingEventsPort) *ManageApartmentsUseCase {
	return &ManageApartmentsUseCase{repo: repo, source: source, events: events}
}

func normalizeApartmentInput(in domain.ApartmentInput) domain.ApartmentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Images = compactImages(in.Images)
	if in.Image == "" && len(in.Images) > 0 {
		in.Image = in.Images[0]
	}
	return in
}

// compactImages убирает пустые ссылки, сохраняя порядок.
func compactImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func (uc *ManageApartmentsUseCase) List(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error) {
	apartments, err := uc.source.FetchApartments(ctx, filter)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list apartments", err, port.Fields{"use_case": "ListApartments"})
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	return apartments, nil
}

func (uc *ManageApartmentsUseCase) Create(ctx context.Context, in domain.ApartmentInput) (*domain.Apartment, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "CreateApartment",
		"branch_id": in.BranchID,
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeApartmentInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid apartment input", port.Fields{"error": err.Error()})
		return nil, err
	}

	apartment, err := uc.repo.CreateApartment(ctx, in)
	if err != nil {
		ucLogger.Error("Failed to create apartment", err, nil)
		return nil, fmt.Errorf("failed to create apartment: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityApartment, domain.ActionCreated, apartment.ID)
	ucLogger.Info("Use case finished successfully", port.Fields{"apartment_id": apartment.ID})
	return apartment, nil
}

func (uc *ManageApartmentsUseCase) Update(ctx context.Context, id uuid.UUID, in domain.ApartmentInput) (*domain.Apartment, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "UpdateApartment",
		"apartment_id": id,
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeApartmentInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid apartment input", port.Fields{"error": err.Error()})
		return nil, err
	}

	apartment, err := uc.repo.UpdateApartment(ctx, id, in)
	if err != nil {
		ucLogger.Error("Failed to update apartment", err, nil)
		return nil, fmt.Errorf("failed to update apartment: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityApartment, domain.ActionUpdated, id)
	ucLogger.Info("Use case finished successfully", nil)
	return apartment, nil
}

func (uc *ManageApartmentsUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "DeleteApartment",
		"apartment_id": id,
	})
	ucLogger.Info("Use case started", nil)

	if err := uc.repo.DeleteApartment(ctx, id); err != nil {
		ucLogger.Error("Failed to delete apartment", err, nil)
		return fmt.Errorf("failed to delete apartment: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityApartment, domain.ActionDeleted, id)
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
