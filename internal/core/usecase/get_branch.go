package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type GetBranchUseCase struct {
	tree usecases_port.GetListingTreeUseCasePort
}

func NewGetBranchUseCase(tree usecases_port.GetListingTreeUseCasePort) *GetBranchUseCase {
	return &GetBranchUseCase{tree: tree}
}

func (uc *GetBranchUseCase) Execute(ctx context.Context, branchID uuid.UUID) (*domain.BranchNode, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "GetBranch",
		"branch_id": branchID,
	})

	snapshot, err := uc.tree.Execute(ctx)
	if err != nil {
		return nil, err
	}

	node, ok := snapshot.Tree.FindBranch(branchID)
	if !ok {
		ucLogger.Info("Branch not found in current snapshot", nil)
		return nil, fmt.Errorf("branch %s: %w", branchID, domain.ErrNotFound)
	}
	return node, nil
}
