package usecases

import (
	"context"
	"time"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/logger"
)

// ReapUseCase garbage-collects the registry: sessions of crashed processes
// and commands nobody consumed. Run at startup and periodically; every
// instance may run it concurrently since deletion is idempotent.
type ReapUseCase struct {
	registry       registry.Registry
	sessionTimeout time.Duration
	commandTTL     time.Duration
	logger         logger.Interface
}

// NewReapUseCase creates a new instance of ReapUseCase
func NewReapUseCase(reg registry.Registry, sessionTimeout, commandTTL time.Duration, log logger.Interface) *ReapUseCase {
	return &ReapUseCase{
		registry:       reg,
		sessionTimeout: sessionTimeout,
		commandTTL:     commandTTL,
		logger:         log,
	}
}

// Execute removes stale sessions and expired commands, returning the
// counts removed.
func (uc *ReapUseCase) Execute(ctx context.Context) (sessions, commands int, err error) {
	sessions, err = uc.registry.ReapStaleSessions(ctx, uc.sessionTimeout)
	if err != nil {
		return 0, 0, err
	}
	commands, err = uc.registry.ReapExpiredCommands(ctx, uc.commandTTL)
	if err != nil {
		return sessions, 0, err
	}
	if sessions > 0 || commands > 0 {
		uc.logger.Infow("registry reaped",
			"stale_sessions", sessions, "expired_commands", commands)
	}
	return sessions, commands, nil
}
