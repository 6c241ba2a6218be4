package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type GetApartmentDetailsUseCase struct {
	source port.ListingSourcePort
	links  *BookingLinkBuilder
}

func NewGetApartmentDetailsUseCase(source port.ListingSourcePort, links *BookingLinkBuilder) *GetApartmentDetailsUseCase {
	return &GetApartmentDetailsUseCase{source: source, links: links}
}

func (uc *GetApartmentDetailsUseCase) Execute(ctx context.Context, apartmentID uuid.UUID) (*domain.ApartmentDetails, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "GetApartmentDetails",
		"apartment_id": apartmentID,
	})
	ucLogger.Info("Use case started", nil)

	// Квартира и ее комнаты не зависят друг от друга - запрашиваем параллельно
	g, gctx := errgroup.WithContext(ctx)
	var apartments []domain.Apartment
	var rooms []domain.Room

	g.Go(func() error {
		var err error
		apartments, err = uc.source.FetchApartments(gctx, domain.ApartmentFilter{ID: &apartmentID})
		if err != nil {
			return fmt.Errorf("failed to fetch apartment: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rooms, err = uc.source.FetchRooms(gctx, domain.RoomFilter{ApartmentID: &apartmentID})
		if err != nil {
			return fmt.Errorf("failed to fetch apartment rooms: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		ucLogger.Error("Failed to fetch apartment details", err, nil)
		return nil, err
	}
	if len(apartments) == 0 {
		ucLogger.Info("Apartment not found", nil)
		return nil, fmt.Errorf("apartment %s: %w", apartmentID, domain.ErrNotFound)
	}
	apartment := apartments[0]

	branchName := apartment.BranchName
	if branchName == "" {
		branches, err := uc.source.FetchBranches(ctx, domain.BranchFilter{ID: &apartment.BranchID})
		if err != nil {
			ucLogger.Error("Failed to fetch apartment branch", err, nil)
			return nil, fmt.Errorf("failed to fetch branch: %w", err)
		}
		if len(branches) == 0 {
			// Висячий branch_id: в дереве такой квартиры нет
			return nil, fmt.Errorf("branch of apartment %s: %w", apartmentID, domain.ErrNotFound)
		}
		branchName = branches[0].Name
	}

	sorted := sortRooms(rooms)
	roomLinks := make(map[uuid.UUID]domain.BookingLink, len(sorted))
	for _, r := range sorted {
		roomLinks[r.ID] = uc.links.ForApartmentRoom(r.Name, apartment.Name, branchName)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"rooms": len(sorted)})
	return &domain.ApartmentDetails{
		Apartment:   apartment,
		BranchName:  branchName,
		Rooms:       sorted,
		BookingLink: uc.links.ForApartment(apartment.Name, branchName),
		RoomLinks:   roomLinks,
	}, nil
}
