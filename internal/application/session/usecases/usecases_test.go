package usecases

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procdesk/internal/domain/registry"
	"procdesk/internal/domain/user"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// fakeRegistry is an in-memory Registry for usecase tests.
type fakeRegistry struct {
	mu      sync.Mutex
	entries map[string]registry.Entry
	now     func() time.Time
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		entries: make(map[string]registry.Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (f *fakeRegistry) key(t registry.EntryType, k string) string {
	return string(t) + "/" + k
}

func (f *fakeRegistry) put(t registry.EntryType, k, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(t, k)] = registry.Entry{Type: t, Key: k, Value: v, LastUpdated: f.now()}
}

func (f *fakeRegistry) RegisterSession(_ context.Context, username, host string) error {
	f.put(registry.EntryTypeSession, username, host)
	return nil
}

func (f *fakeRegistry) Heartbeat(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(registry.EntryTypeSession, username)
	entry, ok := f.entries[k]
	if !ok {
		return apperrors.NewNotFoundError("session not found")
	}
	entry.LastUpdated = f.now()
	f.entries[k] = entry
	return nil
}

func (f *fakeRegistry) ReadSession(_ context.Context, username string) (*registry.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[f.key(registry.EntryTypeSession, username)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakeRegistry) RemoveSession(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, f.key(registry.EntryTypeSession, username))
	return nil
}

func (f *fakeRegistry) ListSessions(_ context.Context) ([]registry.Entry, error) {
	return f.list(registry.EntryTypeSession, ""), nil
}

func (f *fakeRegistry) IssueCommand(_ context.Context, key, payload string) error {
	f.put(registry.EntryTypeCommand, key, payload)
	return nil
}

func (f *fakeRegistry) PollCommands(_ context.Context, keyPrefix string) ([]registry.Entry, error) {
	return f.list(registry.EntryTypeCommand, keyPrefix), nil
}

func (f *fakeRegistry) Consume(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, f.key(registry.EntryTypeCommand, key))
	return nil
}

func (f *fakeRegistry) ReapStaleSessions(_ context.Context, timeout time.Duration) (int, error) {
	return f.reap(registry.EntryTypeSession, timeout), nil
}

func (f *fakeRegistry) ReapExpiredCommands(_ context.Context, ttl time.Duration) (int, error) {
	return f.reap(registry.EntryTypeCommand, ttl), nil
}

func (f *fakeRegistry) list(t registry.EntryType, prefix string) []registry.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []registry.Entry
	for _, entry := range f.entries {
		if entry.Type == t && strings.HasPrefix(entry.Key, prefix) {
			out = append(out, entry)
		}
	}
	return out
}

func (f *fakeRegistry) reap(t registry.EntryType, maxAge time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.now().Add(-maxAge)
	removed := 0
	for k, entry := range f.entries {
		if entry.Type == t && entry.LastUpdated.Before(cutoff) {
			delete(f.entries, k)
			removed++
		}
	}
	return removed
}

var _ registry.Registry = (*fakeRegistry)(nil)

// fakeUserRepo is an in-memory user.Repository.
type fakeUserRepo struct {
	mu     sync.Mutex
	byName map[string]*user.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: make(map[string]*user.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byName[u.Name()]; exists {
		return apperrors.NewConflictError("name taken")
	}
	if err := u.SetID(f.nextID); err != nil {
		return err
	}
	f.nextID++
	f.byName[u.Name()] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByName(_ context.Context, name string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byName[name], nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[u.Name()] = u
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, includeArchived bool) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.byName {
		if u.IsDeleted() {
			continue
		}
		if !u.IsActive() && !includeArchived {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byName[name]
	return ok, nil
}

func (f *fakeUserRepo) AdminExists(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.IsAdmin() && u.IsActive() && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

var _ user.Repository = (*fakeUserRepo)(nil)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return assert.AnError
	}
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, name string) *user.User {
	t.Helper()
	u, err := user.NewUser(name, "secret", false, plainHasher{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginUseCase(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()

	t.Run("successful first login", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		seedUser(t, repo, "alice")
		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)

		result, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "secret", Host: "A1"})
		require.NoError(t, err)
		assert.False(t, result.TookOver)
		assert.False(t, result.ResetRequired)

		entry, err := reg.ReadSession(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "A1", entry.Value)
	})

	t.Run("second login takes over a live session", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		seedUser(t, repo, "alice")
		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)

		_, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "secret", Host: "A1"})
		require.NoError(t, err)

		result, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "secret", Host: "B1"})
		require.NoError(t, err)
		assert.True(t, result.TookOver)
		assert.Equal(t, "A1", result.PreviousHost)

		entry, err := reg.ReadSession(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "B1", entry.Value)
	})

	t.Run("stale session is claimed without takeover", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		seedUser(t, repo, "alice")

		past := time.Now().UTC().Add(-10 * time.Minute)
		reg.now = func() time.Time { return past }
		require.NoError(t, reg.RegisterSession(ctx, "alice", "OLD"))
		reg.now = func() time.Time { return time.Now().UTC() }

		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)
		result, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "secret", Host: "A1"})
		require.NoError(t, err)
		assert.False(t, result.TookOver)
	})

	t.Run("unknown user and bad password are indistinguishable", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		seedUser(t, repo, "alice")
		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)

		_, err := uc.Execute(ctx, LoginCommand{Username: "ghost", Password: "secret", Host: "A1"})
		require.Error(t, err)
		unknownMsg := err.Error()

		_, err = uc.Execute(ctx, LoginCommand{Username: "alice", Password: "wrong", Host: "A1"})
		require.Error(t, err)
		assert.Equal(t, unknownMsg, err.Error())
	})

	t.Run("archived account cannot log in", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		u := seedUser(t, repo, "alice")
		require.NoError(t, u.Archive(time.Now().UTC()))

		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)
		_, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "secret", Host: "A1"})
		assert.Error(t, err)
	})

	t.Run("pending reset is reported", func(t *testing.T) {
		repo := newFakeUserRepo()
		reg := newFakeRegistry()
		u := seedUser(t, repo, "alice")
		require.NoError(t, u.ResetPassword("temporary", plainHasher{}))

		uc := NewLoginUseCase(repo, reg, plainHasher{}, 2*time.Minute, log)
		result, err := uc.Execute(ctx, LoginCommand{Username: "alice", Password: "temporary", Host: "A1"})
		require.NoError(t, err)
		assert.True(t, result.ResetRequired)
	})
}

func TestHeartbeatUseCase(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()

	t.Run("own session refreshes", func(t *testing.T) {
		reg := newFakeRegistry()
		require.NoError(t, reg.RegisterSession(ctx, "alice", "A1"))

		uc := NewHeartbeatUseCase(reg, log)
		result, err := uc.Execute(ctx, HeartbeatCommand{Username: "alice", Host: "A1"})
		require.NoError(t, err)
		assert.False(t, result.Displaced)
	})

	t.Run("host mismatch means displaced", func(t *testing.T) {
		reg := newFakeRegistry()
		require.NoError(t, reg.RegisterSession(ctx, "alice", "B1"))

		uc := NewHeartbeatUseCase(reg, log)
		result, err := uc.Execute(ctx, HeartbeatCommand{Username: "alice", Host: "A1"})
		require.NoError(t, err)
		assert.True(t, result.Displaced)
		assert.Equal(t, "B1", result.DisplacedBy)

		// The displaced side must not have revived the other row.
		entry, err := reg.ReadSession(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "B1", entry.Value)
	})

	t.Run("missing row means displaced", func(t *testing.T) {
		reg := newFakeRegistry()
		uc := NewHeartbeatUseCase(reg, log)

		result, err := uc.Execute(ctx, HeartbeatCommand{Username: "alice", Host: "A1"})
		require.NoError(t, err)
		assert.True(t, result.Displaced)
		assert.Empty(t, result.DisplacedBy)
	})
}

func TestForceLogoutAndShutdownAll(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger()
	reg := newFakeRegistry()

	require.NoError(t, reg.RegisterSession(ctx, "alice", "B1"))

	require.Error(t, NewForceLogoutUseCase(reg, log).Execute(ctx, ""))
	require.NoError(t, NewForceLogoutUseCase(reg, log).Execute(ctx, "alice"))
	require.NoError(t, NewShutdownAllUseCase(reg, log).Execute(ctx))

	pending, err := reg.PollCommands(ctx, registry.CommandForceLogoutPrefix)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "force_logout_alice", pending[0].Key)
	assert.Equal(t, registry.SessionPayload("alice", "B1"), pending[0].Value)

	all, err := reg.PollCommands(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListSessionsUseCase_FlagsStale(t *testing.T) {
	ctx := context.Background()
	reg := newFakeRegistry()

	past := time.Now().UTC().Add(-10 * time.Minute)
	reg.now = func() time.Time { return past }
	require.NoError(t, reg.RegisterSession(ctx, "stale-user", "H1"))
	reg.now = func() time.Time { return time.Now().UTC() }
	require.NoError(t, reg.RegisterSession(ctx, "fresh-user", "H2"))

	uc := NewListSessionsUseCase(reg, 2*time.Minute, logger.NewLogger())
	infos, err := uc.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byName := map[string]SessionInfo{}
	for _, info := range infos {
		byName[info.Username] = info
	}
	assert.True(t, byName["stale-user"].Stale)
	assert.False(t, byName["fresh-user"].Stale)
	assert.Equal(t, "H2", byName["fresh-user"].Host)
}

func TestReapUseCase(t *testing.T) {
	ctx := context.Background()
	reg := newFakeRegistry()

	past := time.Now().UTC().Add(-10 * time.Minute)
	reg.now = func() time.Time { return past }
	require.NoError(t, reg.RegisterSession(ctx, "dead", "H1"))
	require.NoError(t, reg.IssueCommand(ctx, "force_logout_dead", ""))
	reg.now = func() time.Time { return time.Now().UTC() }
	require.NoError(t, reg.RegisterSession(ctx, "alive", "H2"))

	uc := NewReapUseCase(reg, 2*time.Minute, time.Minute, logger.NewLogger())
	sessions, commands, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, commands)

	remaining, err := reg.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "alive", remaining[0].Key)
}
