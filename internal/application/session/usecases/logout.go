package usecases

import (
	"context"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/logger"
)

// LogoutUseCase releases an operator's session row.
type LogoutUseCase struct {
	registry registry.Registry
	logger   logger.Interface
}

// NewLogoutUseCase creates a new instance of LogoutUseCase
func NewLogoutUseCase(reg registry.Registry, log logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{registry: reg, logger: log}
}

// Execute removes the session entry. Removing an absent entry succeeds.
// A process that noticed it was displaced must exit without calling this,
// or it would tear down the session of whoever took the row over.
func (uc *LogoutUseCase) Execute(ctx context.Context, username string) error {
	if err := uc.registry.RemoveSession(ctx, username); err != nil {
		return err
	}
	uc.logger.Infow("logout completed", "username", username)
	return nil
}
