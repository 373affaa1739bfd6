package usecases

import (
	"context"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/logger"
)

// ShutdownAllUseCase publishes the command asking every running instance
// to exit, typically ahead of maintenance on the shared data directory.
type ShutdownAllUseCase struct {
	registry registry.Registry
	logger   logger.Interface
}

// NewShutdownAllUseCase creates a new instance of ShutdownAllUseCase
func NewShutdownAllUseCase(reg registry.Registry, log logger.Interface) *ShutdownAllUseCase {
	return &ShutdownAllUseCase{registry: reg, logger: log}
}

// Execute publishes the shutdown command. Instances notice within one poll
// interval; the row itself is garbage-collected by TTL, not by consumers,
// since every instance has to see it.
func (uc *ShutdownAllUseCase) Execute(ctx context.Context) error {
	if err := uc.registry.IssueCommand(ctx, registry.CommandShutdownAll, ""); err != nil {
		return err
	}
	uc.logger.Infow("shutdown-all issued")
	return nil
}
