// Package app wires the infrastructure stack for the CLI commands: config,
// logging, databases, repositories and the permission enforcer.
package app

import (
	"context"
	"fmt"
	"os"

	"procdesk/internal/domain/registry"
	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/auth"
	"procdesk/internal/infrastructure/config"
	"procdesk/internal/infrastructure/database"
	"procdesk/internal/infrastructure/migration"
	"procdesk/internal/infrastructure/permission"
	"procdesk/internal/infrastructure/repository"
	sharedConfig "procdesk/internal/shared/config"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// App holds the wired dependencies shared by every command.
type App struct {
	Config   *config.Config
	Logger   logger.Interface
	DB       *database.Manager
	Hasher   *auth.BcryptPasswordHasher
	UserRepo user.Repository
	Registry registry.Registry
	Orders   *repository.OrderRepositoryProvider
	Enforcer *permission.Enforcer
}

// Bootstrap loads configuration, initializes logging, opens the system
// database, runs its migrations and builds the shared repositories.
func Bootstrap(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	dbm := database.NewManager(&cfg.Storage)
	shared, err := dbm.Shared()
	if err != nil {
		return nil, err
	}

	if err := migration.NewSharedManager().Migrate(shared); err != nil {
		_ = dbm.Close()
		return nil, err
	}

	enforcer, err := permission.NewEnforcer(shared, log)
	if err != nil {
		_ = dbm.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		DB:       dbm,
		Hasher:   auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost),
		UserRepo: repository.NewUserRepository(shared, log),
		Registry: repository.NewRegistryRepository(shared, &cfg.Coordination, log),
		Orders:   repository.NewOrderRepositoryProvider(dbm, log),
		Enforcer: enforcer,
	}, nil
}

// Close releases every open database connection.
func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.Logger.Warnw("failed to close databases", "error", err)
	}
}

// Coordination returns the coordination timing settings.
func (a *App) Coordination() *sharedConfig.CoordinationConfig {
	return &a.Config.Coordination
}

// Hostname identifies this machine in session rows.
func Hostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown-host"
	}
	return host
}

// Authenticate verifies a username/password pair and returns the account.
func (a *App) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	account, err := a.UserRepo.GetByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	if err := account.CanLogin(); err != nil {
		return nil, err
	}
	if err := account.VerifyPassword(password, a.Hasher); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	return account, nil
}

// Authorize checks the account's role against the policy for one action.
func (a *App) Authorize(account *user.User, resource, action string) error {
	allowed, err := a.Enforcer.Enforce(account.Role(), resource, action)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError(
			fmt.Sprintf("role %s may not %s %s", account.Role(), action, resource))
	}
	return nil
}
