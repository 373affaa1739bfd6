package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procdesk/internal/shared/config"
	"procdesk/internal/shared/ident"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(&config.StorageConfig{DataDir: t.TempDir()})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_SharedAndUserDB(t *testing.T) {
	m := newTestManager(t)

	shared, err := m.Shared()
	require.NoError(t, err)
	require.NotNil(t, shared)

	again, err := m.Shared()
	require.NoError(t, err)
	assert.Same(t, shared, again)
	assert.FileExists(t, m.SharedDBPath())

	db, err := m.UserDB("Alice")
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.FileExists(t, m.UserDBPath("Alice"))

	cached, err := m.UserDB("Alice")
	require.NoError(t, err)
	assert.Same(t, db, cached)
}

func TestManager_UserSlugs(t *testing.T) {
	m := newTestManager(t)

	_, err := m.UserDB("Alice")
	require.NoError(t, err)
	_, err = m.UserDB("José")
	require.NoError(t, err)

	// An archived file must not show up.
	archived := filepath.Join(m.DataDir(), "ARCHIVED_user_old-12345678.db")
	require.NoError(t, os.WriteFile(archived, nil, 0o644))

	slugs, err := m.UserSlugs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ident.Slug("Alice"), ident.Slug("José")}, slugs)
}

func TestManager_ArchiveRestoreDelete(t *testing.T) {
	m := newTestManager(t)

	_, err := m.UserDB("Bob")
	require.NoError(t, err)

	require.NoError(t, m.ArchiveUserDB("Bob"))
	assert.NoFileExists(t, m.UserDBPath("Bob"))
	assert.FileExists(t, m.ArchivedUserDBPath("Bob"))

	require.NoError(t, m.RestoreUserDB("Bob"))
	assert.FileExists(t, m.UserDBPath("Bob"))
	assert.NoFileExists(t, m.ArchivedUserDBPath("Bob"))

	require.NoError(t, m.DeleteUserDB("Bob"))
	assert.NoFileExists(t, m.UserDBPath("Bob"))

	// Archiving an account that never opened a database is a no-op.
	assert.NoError(t, m.ArchiveUserDB("ghost"))
}

func TestManager_MaintenanceStamp(t *testing.T) {
	m := newTestManager(t)

	now := time.Now().UTC()
	require.NoError(t, m.RunMaintenance(now))

	stamp := filepath.Join(m.DataDir(), maintenanceStampFile)
	require.FileExists(t, stamp)
	info, err := os.Stat(stamp)
	require.NoError(t, err)
	firstWrite := info.ModTime()

	// Within the interval nothing runs and the stamp is untouched.
	require.NoError(t, m.RunMaintenance(now.Add(time.Hour)))
	info, err = os.Stat(stamp)
	require.NoError(t, err)
	assert.Equal(t, firstWrite, info.ModTime())

	// Past the interval the stamp is refreshed.
	require.NoError(t, m.RunMaintenance(now.Add(8*24*time.Hour)))
	recorded, ok := readStamp(stamp)
	require.True(t, ok)
	assert.Equal(t, now.Add(8*24*time.Hour).Unix(), recorded.Unix())
}
