package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procdesk/internal/domain/registry"
	"procdesk/internal/domain/user"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

type memUserRepo struct {
	mu     sync.Mutex
	byName map[string]*user.User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: make(map[string]*user.User), nextID: 1}
}

func (m *memUserRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Name()]; ok {
		return apperrors.NewConflictError("name taken")
	}
	if err := u.SetID(m.nextID); err != nil {
		return err
	}
	m.nextID++
	m.byName[u.Name()] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uint) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetByName(_ context.Context, name string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byName[name], nil
}

func (m *memUserRepo) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[u.Name()] = u
	return nil
}

func (m *memUserRepo) List(_ context.Context, includeArchived bool) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*user.User
	for _, u := range m.byName {
		if u.IsDeleted() || (!u.IsActive() && !includeArchived) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byName[name]
	return ok, nil
}

func (m *memUserRepo) AdminExists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.IsAdmin() && u.IsActive() && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

var _ user.Repository = (*memUserRepo)(nil)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return assert.AnError
	}
	return nil
}

// recordingDataStore records lifecycle calls on the per-user files.
type recordingDataStore struct {
	archived []string
	restored []string
	deleted  []string
}

func (r *recordingDataStore) ArchiveUserDB(username string) error {
	r.archived = append(r.archived, username)
	return nil
}

func (r *recordingDataStore) RestoreUserDB(username string) error {
	r.restored = append(r.restored, username)
	return nil
}

func (r *recordingDataStore) DeleteUserDB(username string) error {
	r.deleted = append(r.deleted, username)
	return nil
}

// stubRegistry records the registry traffic the lifecycle usecases emit.
type stubRegistry struct {
	registry.Registry
	sessionHost     string
	commands        []string
	payloads        []string
	removedSessions []string
}

func (s *stubRegistry) ReadSession(_ context.Context, username string) (*registry.Entry, error) {
	if s.sessionHost == "" {
		return nil, nil
	}
	return &registry.Entry{
		Type:  registry.EntryTypeSession,
		Key:   username,
		Value: s.sessionHost,
	}, nil
}

func (s *stubRegistry) IssueCommand(_ context.Context, key, payload string) error {
	s.commands = append(s.commands, key)
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *stubRegistry) RemoveSession(_ context.Context, username string) error {
	s.removedSessions = append(s.removedSessions, username)
	return nil
}

func TestCreateUserUseCase(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()
	repo := newMemUserRepo()
	uc := NewCreateUserUseCase(repo, plainHasher{}, log)

	created, err := uc.Execute(ctx, CreateUserCommand{Name: "alice", Password: "pw", Admin: false})
	require.NoError(t, err)
	assert.NotZero(t, created.ID())
	assert.False(t, created.IsAdmin())

	_, err = uc.Execute(ctx, CreateUserCommand{Name: "alice", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = uc.Execute(ctx, CreateUserCommand{Name: " ", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestResetAndCompletePasswordFlow(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()
	repo := newMemUserRepo()

	_, err := NewCreateUserUseCase(repo, plainHasher{}, log).
		Execute(ctx, CreateUserCommand{Name: "alice", Password: "original"})
	require.NoError(t, err)

	require.NoError(t, NewResetPasswordUseCase(repo, plainHasher{}, log).
		Execute(ctx, "alice", "temporary"))

	account, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, account.ResetPending())
	assert.NoError(t, account.VerifyPassword("temporary", plainHasher{}))

	require.NoError(t, NewCompletePasswordResetUseCase(repo, plainHasher{}, log).
		Execute(ctx, "alice", "chosen"))

	account, err = repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, account.ResetPending())
	assert.NoError(t, account.VerifyPassword("chosen", plainHasher{}))

	t.Run("reset of unknown account", func(t *testing.T) {
		err := NewResetPasswordUseCase(repo, plainHasher{}, log).Execute(ctx, "ghost", "x")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestChangePasswordUseCase(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()
	repo := newMemUserRepo()

	_, err := NewCreateUserUseCase(repo, plainHasher{}, log).
		Execute(ctx, CreateUserCommand{Name: "alice", Password: "old"})
	require.NoError(t, err)

	uc := NewChangePasswordUseCase(repo, plainHasher{}, log)

	require.Error(t, uc.Execute(ctx, "alice", "wrong", "new"))
	require.NoError(t, uc.Execute(ctx, "alice", "old", "new"))

	account, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.NoError(t, account.VerifyPassword("new", plainHasher{}))
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()
	repo := newMemUserRepo()
	files := &recordingDataStore{}
	reg := &stubRegistry{sessionHost: "B1"}

	_, err := NewCreateUserUseCase(repo, plainHasher{}, log).
		Execute(ctx, CreateUserCommand{Name: "alice", Password: "pw"})
	require.NoError(t, err)

	t.Run("archive deactivates, forces logout and parks the file", func(t *testing.T) {
		require.NoError(t, NewArchiveUserUseCase(repo, files, reg, log).Execute(ctx, "alice"))

		account, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, account.IsActive())
		assert.Error(t, account.CanLogin())

		assert.Equal(t, []string{"alice"}, files.archived)
		assert.Contains(t, reg.commands, registry.ForceLogoutKey("alice"))
		assert.Contains(t, reg.payloads, registry.SessionPayload("alice", "B1"))
	})

	t.Run("archive twice fails", func(t *testing.T) {
		err := NewArchiveUserUseCase(repo, files, reg, log).Execute(ctx, "alice")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("restore brings account and file back", func(t *testing.T) {
		require.NoError(t, NewRestoreUserUseCase(repo, files, log).Execute(ctx, "alice"))

		account, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, account.IsActive())
		assert.NoError(t, account.CanLogin())
		assert.Equal(t, []string{"alice"}, files.restored)
	})

	t.Run("delete tombstones the account and drops the file", func(t *testing.T) {
		require.NoError(t, NewDeleteUserUseCase(repo, files, reg, log).Execute(ctx, "alice"))

		account, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, account.IsDeleted())

		listed, err := NewListUsersUseCase(repo, log).Execute(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, listed)

		assert.Equal(t, []string{"alice"}, files.deleted)
		assert.Contains(t, reg.removedSessions, "alice")
	})
}
