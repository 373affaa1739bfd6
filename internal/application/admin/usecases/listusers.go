package usecases

import (
	"context"

	"procdesk/internal/domain/user"
	"procdesk/internal/shared/logger"
)

// ListUsersUseCase lists accounts for administration screens.
type ListUsersUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

// NewListUsersUseCase creates a new instance of ListUsersUseCase
func NewListUsersUseCase(userRepo user.Repository, log logger.Interface) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo, logger: log}
}

// Execute lists accounts, including archived ones when asked. Removed
// accounts never appear.
func (uc *ListUsersUseCase) Execute(ctx context.Context, includeArchived bool) ([]*user.User, error) {
	return uc.userRepo.List(ctx, includeArchived)
}
