package usecases

import (
	"context"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// ForceLogoutUseCase issues the command asking whichever process holds the
// named user's session to log it out. Delivery is at-least-once; the
// target consumes the command when it acts.
type ForceLogoutUseCase struct {
	registry registry.Registry
	logger   logger.Interface
}

// NewForceLogoutUseCase creates a new instance of ForceLogoutUseCase
func NewForceLogoutUseCase(reg registry.Registry, log logger.Interface) *ForceLogoutUseCase {
	return &ForceLogoutUseCase{registry: reg, logger: log}
}

// Execute publishes the force-logout command for username. The payload
// records which host held the session when the command was issued.
func (uc *ForceLogoutUseCase) Execute(ctx context.Context, username string) error {
	if username == "" {
		return errors.NewValidationError("username is required")
	}
	host := ""
	if entry, err := uc.registry.ReadSession(ctx, username); err == nil && entry != nil {
		host = entry.Value
	}
	payload := registry.SessionPayload(username, host)
	if err := uc.registry.IssueCommand(ctx, registry.ForceLogoutKey(username), payload); err != nil {
		return err
	}
	uc.logger.Infow("force logout issued", "username", username)
	return nil
}
