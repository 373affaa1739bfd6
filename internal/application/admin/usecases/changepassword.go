package usecases

import (
	"context"

	"procdesk/internal/domain/user"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// ChangePasswordUseCase lets an operator change their own password after
// proving they know the current one.
type ChangePasswordUseCase struct {
	userRepo user.Repository
	hasher   user.PasswordHasher
	logger   logger.Interface
}

// NewChangePasswordUseCase creates a new instance of ChangePasswordUseCase
func NewChangePasswordUseCase(userRepo user.Repository, hasher user.PasswordHasher, log logger.Interface) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{userRepo: userRepo, hasher: hasher, logger: log}
}

// Execute verifies the current password and stores the new one.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, username, current, next string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.ChangePassword(current, next, uc.hasher); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	uc.logger.Infow("password changed", "username", username)
	return nil
}

// CompletePasswordResetUseCase finishes a pending reset: the operator
// logged in with the temporary password and now picks their own.
type CompletePasswordResetUseCase struct {
	userRepo user.Repository
	hasher   user.PasswordHasher
	logger   logger.Interface
}

// NewCompletePasswordResetUseCase creates a new instance of CompletePasswordResetUseCase
func NewCompletePasswordResetUseCase(userRepo user.Repository, hasher user.PasswordHasher, log logger.Interface) *CompletePasswordResetUseCase {
	return &CompletePasswordResetUseCase{userRepo: userRepo, hasher: hasher, logger: log}
}

// Execute stores the chosen password and clears the reset flag.
func (uc *CompletePasswordResetUseCase) Execute(ctx context.Context, username, next string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.ConsumeReset(next, uc.hasher); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	uc.logger.Infow("password reset completed", "username", username)
	return nil
}
