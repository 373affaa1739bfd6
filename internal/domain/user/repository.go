package user

import "context"

// Repository defines the interface for user account persistence.
type Repository interface {
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id uint) (*User, error)

	// GetByName retrieves an account by its unique name, nil when absent.
	GetByName(ctx context.Context, name string) (*User, error)

	Update(ctx context.Context, user *User) error

	// List returns accounts ordered by name. Removed accounts are always
	// excluded; archived ones only when includeArchived is set.
	List(ctx context.Context, includeArchived bool) ([]*User, error)

	ExistsByName(ctx context.Context, name string) (bool, error)

	// AdminExists reports whether any active administrator account exists.
	// Used to decide whether first-run bootstrap is required.
	AdminExists(ctx context.Context) (bool, error)
}
