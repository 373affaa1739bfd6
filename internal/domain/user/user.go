package user

import (
	"strings"
	"time"

	"procdesk/internal/shared/errors"
)

// Role names used by the permission layer.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// PasswordHasher abstracts password hashing so the aggregate never sees
// plaintext storage details.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// User is the account aggregate. Accounts are never hard-deleted in the
// normal flow: archiving deactivates, deletion is a soft mark, and the
// per-user database file follows the lifecycle by rename.
type User struct {
	id           uint
	name         string
	passwordHash string
	admin        bool
	active       bool
	deleted      bool
	resetPending bool
	archivedAt   *time.Time
	createdAt    time.Time
}

// NewUser creates an account with a freshly hashed password.
func NewUser(name, password string, admin bool, hasher PasswordHasher) (*User, error) {
	name = strings.TrimSpace(name)
	password = strings.TrimSpace(password)
	if name == "" || password == "" {
		return nil, errors.NewValidationError("name and password are required")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return &User{
		name:         name,
		passwordHash: hash,
		admin:        admin,
		active:       true,
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructUser rebuilds an aggregate from persistence.
func ReconstructUser(id uint, name, passwordHash string, admin, active, deleted, resetPending bool, archivedAt *time.Time, createdAt time.Time) *User {
	return &User{
		id:           id,
		name:         name,
		passwordHash: passwordHash,
		admin:        admin,
		active:       active,
		deleted:      deleted,
		resetPending: resetPending,
		archivedAt:   archivedAt,
		createdAt:    createdAt,
	}
}

func (u *User) ID() uint              { return u.id }
func (u *User) Name() string          { return u.name }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) IsAdmin() bool         { return u.admin }
func (u *User) IsActive() bool        { return u.active }
func (u *User) IsDeleted() bool       { return u.deleted }
func (u *User) ResetPending() bool    { return u.resetPending }
func (u *User) ArchivedAt() *time.Time { return u.archivedAt }
func (u *User) CreatedAt() time.Time  { return u.createdAt }

// Role maps the admin flag onto the permission layer's role names.
func (u *User) Role() string {
	if u.admin {
		return RoleAdmin
	}
	return RoleOperator
}

// SetID is called by the repository after insert.
func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return errors.NewInternalError("user ID already set")
	}
	u.id = id
	return nil
}

// VerifyPassword checks a login attempt against the stored hash.
func (u *User) VerifyPassword(password string, hasher PasswordHasher) error {
	return hasher.Verify(password, u.passwordHash)
}

// CanLogin reports why an account may not authenticate, nil when it can.
func (u *User) CanLogin() error {
	switch {
	case u.deleted:
		return errors.NewUnauthorizedError("account has been removed")
	case !u.active:
		return errors.NewUnauthorizedError("account is archived")
	default:
		return nil
	}
}

// ChangePassword replaces the hash after verifying the current password.
func (u *User) ChangePassword(current, next string, hasher PasswordHasher) error {
	if err := u.VerifyPassword(current, hasher); err != nil {
		return errors.NewUnauthorizedError("current password does not match")
	}
	return u.setPassword(next, hasher)
}

// ResetPassword sets a temporary password and flags the account so the next
// login must replace it.
func (u *User) ResetPassword(temporary string, hasher PasswordHasher) error {
	if err := u.setPassword(temporary, hasher); err != nil {
		return err
	}
	u.resetPending = true
	return nil
}

// ConsumeReset replaces the temporary password with a user-chosen one and
// clears the pending flag. Called during the first login after a reset.
func (u *User) ConsumeReset(next string, hasher PasswordHasher) error {
	if !u.resetPending {
		return errors.NewConflictError("no password reset pending")
	}
	if err := u.setPassword(next, hasher); err != nil {
		return err
	}
	u.resetPending = false
	return nil
}

func (u *User) setPassword(password string, hasher PasswordHasher) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return errors.NewValidationError("password must not be empty")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	return nil
}

// SetAdmin toggles the administrative flag.
func (u *User) SetAdmin(admin bool) {
	u.admin = admin
}

// Archive deactivates the account, keeping its data.
func (u *User) Archive(now time.Time) error {
	if !u.active {
		return errors.NewConflictError("account is already archived")
	}
	u.active = false
	at := now.UTC()
	u.archivedAt = &at
	return nil
}

// Restore reactivates an archived account.
func (u *User) Restore() error {
	if u.active {
		return errors.NewConflictError("account is not archived")
	}
	if u.deleted {
		return errors.NewConflictError("account has been removed")
	}
	u.active = true
	u.archivedAt = nil
	return nil
}

// SoftDelete marks the account removed. The record stays for audit; login
// and listing exclude it.
func (u *User) SoftDelete(now time.Time) error {
	if u.deleted {
		return errors.NewConflictError("account is already removed")
	}
	u.deleted = true
	u.active = false
	at := now.UTC()
	u.archivedAt = &at
	return nil
}
