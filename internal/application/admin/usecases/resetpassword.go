package usecases

import (
	"context"

	"procdesk/internal/domain/user"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// ResetPasswordUseCase lets an administrator hand a locked-out operator a
// temporary password. The account is flagged, and the operator must pick
// a new password at the next login.
type ResetPasswordUseCase struct {
	userRepo user.Repository
	hasher   user.PasswordHasher
	logger   logger.Interface
}

// NewResetPasswordUseCase creates a new instance of ResetPasswordUseCase
func NewResetPasswordUseCase(userRepo user.Repository, hasher user.PasswordHasher, log logger.Interface) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{userRepo: userRepo, hasher: hasher, logger: log}
}

// Execute sets the temporary password and the reset-pending flag.
func (uc *ResetPasswordUseCase) Execute(ctx context.Context, username, temporary string) error {
	account, err := uc.userRepo.GetByName(ctx, username)
	if err != nil {
		return err
	}
	if account == nil {
		return errors.NewNotFoundError("account not found")
	}

	if err := account.ResetPassword(temporary, uc.hasher); err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, account); err != nil {
		return err
	}

	uc.logger.Infow("password reset issued", "username", username)
	return nil
}
