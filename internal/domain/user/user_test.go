package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procdesk/internal/shared/errors"
)

// plainHasher is a test double; production code uses bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if "h:"+password != hash {
		return errors.NewUnauthorizedError("password verification failed")
	}
	return nil
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice", "secret", false, plainHasher{})
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Name())
	assert.True(t, u.IsActive())
	assert.False(t, u.IsAdmin())
	assert.Equal(t, RoleOperator, u.Role())
	assert.NoError(t, u.VerifyPassword("secret", plainHasher{}))
	assert.Error(t, u.VerifyPassword("wrong", plainHasher{}))
}

func TestNewUserRejectsBlankFields(t *testing.T) {
	_, err := NewUser("  ", "secret", false, plainHasher{})
	assert.True(t, errors.IsValidation(err))

	_, err = NewUser("alice", "   ", false, plainHasher{})
	assert.True(t, errors.IsValidation(err))
}

func TestAdminRole(t *testing.T) {
	u, err := NewUser("root", "secret", true, plainHasher{})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role())
}

func TestChangePassword(t *testing.T) {
	u, err := NewUser("alice", "old", false, plainHasher{})
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("bad", "new", plainHasher{}))
	require.NoError(t, u.ChangePassword("old", "new", plainHasher{}))
	assert.NoError(t, u.VerifyPassword("new", plainHasher{}))
}

func TestResetFlow(t *testing.T) {
	u, err := NewUser("alice", "original", false, plainHasher{})
	require.NoError(t, err)

	require.NoError(t, u.ResetPassword("temp123", plainHasher{}))
	assert.True(t, u.ResetPending())
	assert.NoError(t, u.VerifyPassword("temp123", plainHasher{}))

	require.NoError(t, u.ConsumeReset("chosen", plainHasher{}))
	assert.False(t, u.ResetPending())
	assert.NoError(t, u.VerifyPassword("chosen", plainHasher{}))

	// no reset pending anymore
	err = u.ConsumeReset("again", plainHasher{})
	assert.True(t, errors.IsConflict(err))
}

func TestLifecycle(t *testing.T) {
	now := time.Date(2025, time.August, 31, 10, 0, 0, 0, time.UTC)

	u, err := NewUser("alice", "secret", false, plainHasher{})
	require.NoError(t, err)
	assert.NoError(t, u.CanLogin())

	require.NoError(t, u.Archive(now))
	assert.False(t, u.IsActive())
	require.NotNil(t, u.ArchivedAt())
	assert.True(t, errors.IsConflict(u.Archive(now)))
	assert.Error(t, u.CanLogin())

	require.NoError(t, u.Restore())
	assert.True(t, u.IsActive())
	assert.Nil(t, u.ArchivedAt())

	require.NoError(t, u.SoftDelete(now))
	assert.True(t, u.IsDeleted())
	assert.Error(t, u.CanLogin())
	assert.True(t, errors.IsConflict(u.Restore()))
}

func TestSetIDOnlyOnce(t *testing.T) {
	u, err := NewUser("alice", "secret", false, plainHasher{})
	require.NoError(t, err)

	require.NoError(t, u.SetID(7))
	assert.Equal(t, uint(7), u.ID())
	assert.Error(t, u.SetID(8))
}
