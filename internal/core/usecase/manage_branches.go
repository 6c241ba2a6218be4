package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ManageBranchesUseCase struct {
	repo   port.ListingRepositoryPort
	events port.ListingEventsPort
}

func NewManageBranchesUseCase(repo port.ListingRepositoryPort, events port.ListingEventsPort) *ManageBranchesUseCase {
	return &ManageBranchesUseCase{repo: repo, events: events}
}

// NormalizeCity приводит название города к виду "Saint Petersburg".
func NormalizeCity(city string) string {
	fields := strings.Fields(city)
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}

func normalizeBranchInput(in domain.BranchInput) domain.BranchInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = NormalizeCity(in.City)
	return in
}

func (uc *ManageBranchesUseCase) List(ctx context.Context) ([]domain.Branch, error) {
	branches, err := uc.repo.ListBranchesByName(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list branches", err, port.Fields{"use_case": "ListBranches"})
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

func (uc *ManageBranchesUseCase) Create(ctx context.Context, in domain.BranchInput) (*domain.Branch, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CreateBranch",
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeBranchInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid branch input", port.Fields{"error": err.Error()})
		return nil, err
	}

	branch, err := uc.repo.CreateBranch(ctx, in)
	if err != nil {
		ucLogger.Error("Failed to create branch", err, nil)
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityBranch, domain.ActionCreated, branch.ID)
	ucLogger.Info("Use case finished successfully", port.Fields{"branch_id": branch.ID})
	return branch, nil
}

func (uc *ManageBranchesUseCase) Update(ctx context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "UpdateBranch",
		"branch_id": id,
	})
	ucLogger.Info("Use case started", nil)

	in = normalizeBranchInput(in)
	if err := in.Validate(); err != nil {
		ucLogger.Warn("Invalid branch input", port.Fields{"error": err.Error()})
		return nil, err
	}

	branch, err := uc.repo.UpdateBranch(ctx, id, in)
	if err != nil {
		ucLogger.Error("Failed to update branch", err, nil)
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityBranch, domain.ActionUpdated, id)
	ucLogger.Info("Use case finished successfully", nil)
	return branch, nil
}

func (uc *ManageBranchesUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "DeleteBranch",
		"branch_id": id,
	})
	ucLogger.Info("Use case started", nil)

	if err := uc.repo.DeleteBranch(ctx, id); err != nil {
		ucLogger.Error("Failed to delete branch", err, nil)
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityBranch, domain.ActionDeleted, id)
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
