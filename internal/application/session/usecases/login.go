package usecases

import (
	"context"
	"fmt"
	"time"

	"procdesk/internal/domain/registry"
	"procdesk/internal/domain/user"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// LoginCommand carries the credentials and the identity of the host the
// login happens on.
type LoginCommand struct {
	Username string
	Password string
	Host     string
}

// LoginResult reports the outcome of a successful login. TookOver is set
// when a live session on another host was displaced by this one; the
// displaced process finds out on its next heartbeat.
type LoginResult struct {
	User          *user.User
	TookOver      bool
	PreviousHost  string
	ResetRequired bool
}

// LoginUseCase authenticates an operator and claims the session row.
type LoginUseCase struct {
	userRepo       user.Repository
	registry       registry.Registry
	hasher         user.PasswordHasher
	sessionTimeout time.Duration
	now            func() time.Time
	logger         logger.Interface
}

// NewLoginUseCase creates a new instance of LoginUseCase
func NewLoginUseCase(
	userRepo user.Repository,
	reg registry.Registry,
	hasher user.PasswordHasher,
	sessionTimeout time.Duration,
	log logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		userRepo:       userRepo,
		registry:       reg,
		hasher:         hasher,
		sessionTimeout: sessionTimeout,
		now:            func() time.Time { return time.Now().UTC() },
		logger:         log,
	}
}

// Execute verifies the credentials, then registers the session. When the
// row already holds a fresh session from another host, registration still
// proceeds: last write wins, and the result records who was displaced.
func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	account, err := uc.userRepo.GetByName(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		uc.logger.Warnw("login rejected, unknown account", "username", cmd.Username)
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}

	if err := account.CanLogin(); err != nil {
		uc.logger.Warnw("login rejected", "username", cmd.Username, "error", err)
		return nil, err
	}

	if err := account.VerifyPassword(cmd.Password, uc.hasher); err != nil {
		uc.logger.Warnw("login rejected, bad password", "username", cmd.Username)
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}

	result := &LoginResult{
		User:          account,
		ResetRequired: account.ResetPending(),
	}

	existing, err := uc.registry.ReadSession(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.IsStale(uc.now(), uc.sessionTimeout) && existing.Value != cmd.Host {
		result.TookOver = true
		result.PreviousHost = existing.Value
	}

	if err := uc.registry.RegisterSession(ctx, cmd.Username, cmd.Host); err != nil {
		return nil, err
	}

	uc.logger.Infow("login succeeded",
		"username", cmd.Username,
		"host", cmd.Host,
		"took_over", result.TookOver)
	return result, nil
}
