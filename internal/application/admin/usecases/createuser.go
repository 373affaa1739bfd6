package usecases

import (
	"context"

	"procdesk/internal/domain/user"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// CreateUserCommand carries the fields of a new account.
type CreateUserCommand struct {
	Name     string
	Password string
	Admin    bool
}

// CreateUserUseCase registers a new account in the shared database. The
// operator's order database file is created lazily on first login, not
// here.
type CreateUserUseCase struct {
	userRepo user.Repository
	hasher   user.PasswordHasher
	logger   logger.Interface
}

// NewCreateUserUseCase creates a new instance of CreateUserUseCase
func NewCreateUserUseCase(userRepo user.Repository, hasher user.PasswordHasher, log logger.Interface) *CreateUserUseCase {
	return &CreateUserUseCase{userRepo: userRepo, hasher: hasher, logger: log}
}

// Execute creates the account, rejecting duplicate names.
func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	exists, err := uc.userRepo.ExistsByName(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewConflictError("an account with this name already exists")
	}

	account, err := user.NewUser(cmd.Name, cmd.Password, cmd.Admin, uc.hasher)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Infow("account created",
		"username", account.Name(), "admin", account.IsAdmin())
	return account, nil
}
