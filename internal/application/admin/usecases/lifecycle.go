package usecases

import (
	"context"
	"time"

	"procdesk/internal/domain/registry"
	"procdesk/internal/domain/user"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// UserDataStore manages the per-operator database files that follow
// account lifecycle transitions.
type UserDataStore interface {
	ArchiveUserDB(username string) error
	RestoreUserDB(username string) error
	DeleteUserDB(username string) error
}

// ArchiveUserUseCase retires an account: the account is deactivated, any
// live session is told to log out, and the order database file is parked
// under the archived prefix.
type ArchiveUserUseCase struct {
	userRepo user.Repository
	files    UserDataStore
	registry registry.Registry
	now      func() time.Time
	logger   logger.Interface
}

// NewArchiveUserUseCase creates a new instance of ArchiveUserUseCase
func NewArchiveUserUseCase(userRepo user.Repository, files UserDataStore, reg registry.Registry, log logger.Interface) *ArchiveUserUseCase {
	return &ArchiveUserUseCase{
		userRepo: userRepo,
		files:    files,
		registry: reg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

// forceLogoutPayload captures which host holds the user's session at issue
// time; an absent session yields an empty host.
func forceLogoutPayload(ctx context.Context, reg registry.Registry, username string) string {
	host := ""
	if entry, err := reg.ReadSession(ctx, username); err == nil && entry != nil {
		host = entry.Value
	}
	return registry.SessionPayload(username, host)
}

// Execute archives the account. The account row flips first so a login
// attempt racing the archive is already rejected while the file moves.
func (uc *ArchiveUserUseCase) Execute(ctx context.Context, username string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.Archive(uc.now()); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	if err := uc.registry.IssueCommand(ctx, registry.ForceLogoutKey(username), forceLogoutPayload(ctx, uc.registry, username)); err != nil {
		uc.logger.Warnw("failed to issue force logout for archived account",
			"username", username, "error", err)
	}

	if err := uc.files.ArchiveUserDB(username); err != nil {
		return err
	}

	uc.logger.Infow("account archived", "username", username)
	return nil
}

// RestoreUserUseCase reactivates an archived account and brings its order
// database file back.
type RestoreUserUseCase struct {
	userRepo user.Repository
	files    UserDataStore
	logger   logger.Interface
}

// NewRestoreUserUseCase creates a new instance of RestoreUserUseCase
func NewRestoreUserUseCase(userRepo user.Repository, files UserDataStore, log logger.Interface) *RestoreUserUseCase {
	return &RestoreUserUseCase{userRepo: userRepo, files: files, logger: log}
}

// Execute restores the account and its data file.
func (uc *RestoreUserUseCase) Execute(ctx context.Context, username string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.Restore(); err != nil {
		return err
	}
	if err := uc.files.RestoreUserDB(username); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	uc.logger.Infow("account restored", "username", username)
	return nil
}

// DeleteUserUseCase removes an account for good: the row is kept as a
// tombstone for audit, the session row goes away, and the order database
// file is deleted.
type DeleteUserUseCase struct {
	userRepo user.Repository
	files    UserDataStore
	registry registry.Registry
	now      func() time.Time
	logger   logger.Interface
}

// NewDeleteUserUseCase creates a new instance of DeleteUserUseCase
func NewDeleteUserUseCase(userRepo user.Repository, files UserDataStore, reg registry.Registry, log logger.Interface) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		userRepo: userRepo,
		files:    files,
		registry: reg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

// Execute deletes the account and its data.
func (uc *DeleteUserUseCase) Execute(ctx context.Context, username string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.SoftDelete(uc.now()); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	if err := uc.registry.IssueCommand(ctx, registry.ForceLogoutKey(username), forceLogoutPayload(ctx, uc.registry, username)); err != nil {
		uc.logger.Warnw("failed to issue force logout for removed account",
			"username", username, "error", err)
	}
	if err := uc.registry.RemoveSession(ctx, username); err != nil {
		uc.logger.Warnw("failed to remove session of removed account",
			"username", username, "error", err)
	}

	if err := uc.files.DeleteUserDB(username); err != nil {
		return err
	}

	uc.logger.Infow("account removed", "username", username)
	return nil
}
