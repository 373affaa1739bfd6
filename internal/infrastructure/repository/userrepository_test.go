package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/persistence/models"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return assert.AnError
	}
	return nil
}

func setupUserRepo(t *testing.T) user.Repository {
	t.Helper()
	db := setupTestDB(t, &models.UserModel{})
	return NewUserRepository(db, testLogger())
}

func mustUser(t *testing.T, name string, admin bool) *user.User {
	t.Helper()
	u, err := user.NewUser(name, "secret", admin, plainHasher{})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	u := mustUser(t, "alice", false)
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID())

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, u.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "alice", found.Name())
		assert.False(t, found.IsAdmin())
	})

	t.Run("get by name", func(t *testing.T) {
		found, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, u.ID(), found.ID())
	})

	t.Run("absent lookups return nil", func(t *testing.T) {
		found, err := repo.GetByName(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		dup := mustUser(t, "alice", false)
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("exists by name", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUserRepository_UpdatePersistsFlags(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	u := mustUser(t, "bob", false)
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, u.ResetPassword("temporary", plainHasher{}))
	require.NoError(t, repo.Update(ctx, u))

	found, err := repo.GetByName(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.ResetPending())
	assert.NoError(t, found.VerifyPassword("temporary", plainHasher{}))
}

func TestUserRepository_ListFiltersArchivedAndDeleted(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	active := mustUser(t, "active", false)
	archived := mustUser(t, "archived", false)
	removed := mustUser(t, "removed", false)
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, archived))
	require.NoError(t, repo.Create(ctx, removed))

	require.NoError(t, archived.Archive(time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, archived))

	require.NoError(t, removed.SoftDelete(time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, removed))

	names := func(users []*user.User) []string {
		out := make([]string, 0, len(users))
		for _, u := range users {
			out = append(out, u.Name())
		}
		return out
	}

	current, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, names(current))

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "archived"}, names(all))
}

func TestUserRepository_AdminExists(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	exists, err := repo.AdminExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	admin := mustUser(t, "root", true)
	require.NoError(t, repo.Create(ctx, admin))

	exists, err = repo.AdminExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, admin.Archive(time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, admin))

	exists, err = repo.AdminExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
