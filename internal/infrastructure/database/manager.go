package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"procdesk/internal/shared/config"
	"procdesk/internal/shared/ident"
	appLogger "procdesk/internal/shared/logger"
)

const (
	// SharedDBFile holds accounts and the coordination registry.
	SharedDBFile = "system.db"

	userDBPrefix   = "user_"
	userDBSuffix   = ".db"
	archivedPrefix = "ARCHIVED_"
)

// Manager opens and caches the sqlite connections: one shared system
// database plus one database file per operator. All files live under the
// configured data directory, which may sit on a network share.
type Manager struct {
	cfg *config.StorageConfig

	mu      sync.Mutex
	shared  *gorm.DB
	userDBs map[string]*gorm.DB // keyed by username slug
}

// NewManager creates a manager rooted at cfg.DataDir. The directory is
// created on first open, not here, so construction never touches disk.
func NewManager(cfg *config.StorageConfig) *Manager {
	return &Manager{
		cfg:     cfg,
		userDBs: make(map[string]*gorm.DB),
	}
}

// DataDir returns the directory holding every database file.
func (m *Manager) DataDir() string {
	return m.cfg.DataDir
}

// SharedDBPath returns the filesystem path of the system database.
func (m *Manager) SharedDBPath() string {
	return filepath.Join(m.cfg.DataDir, SharedDBFile)
}

// UserDBPath returns the filesystem path of the given operator's database.
func (m *Manager) UserDBPath(username string) string {
	return filepath.Join(m.cfg.DataDir, userDBFileName(ident.Slug(username)))
}

// ArchivedUserDBPath returns the path an archived operator database is
// parked at.
func (m *Manager) ArchivedUserDBPath(username string) string {
	return filepath.Join(m.cfg.DataDir, archivedPrefix+userDBFileName(ident.Slug(username)))
}

// Shared returns the connection to the system database, opening it on
// first use.
func (m *Manager) Shared() (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shared != nil {
		return m.shared, nil
	}

	db, err := m.open(m.SharedDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open system database: %w", err)
	}
	m.shared = db

	appLogger.Info("system database opened", "path", m.SharedDBPath())
	return m.shared, nil
}

// UserDB returns the connection for the given operator, opening and
// caching it on first use.
func (m *Manager) UserDB(username string) (*gorm.DB, error) {
	return m.UserDBBySlug(ident.Slug(username))
}

// UserDBBySlug is UserDB keyed by an already-computed slug, used when
// iterating database files found on disk.
func (m *Manager) UserDBBySlug(slug string) (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.userDBs[slug]; ok {
		return db, nil
	}

	path := filepath.Join(m.cfg.DataDir, userDBFileName(slug))
	db, err := m.open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database %s: %w", slug, err)
	}
	m.userDBs[slug] = db

	appLogger.Debug("user database opened", "slug", slug, "path", path)
	return db, nil
}

// UserSlugs lists the slugs of every active operator database file in the
// data directory. Archived files are skipped.
func (m *Manager) UserSlugs() ([]string, error) {
	pattern := filepath.Join(m.cfg.DataDir, userDBPrefix+"*"+userDBSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}

	slugs := make([]string, 0, len(matches))
	for _, match := range matches {
		name := filepath.Base(match)
		if strings.HasPrefix(name, archivedPrefix) {
			continue
		}
		slug := strings.TrimSuffix(strings.TrimPrefix(name, userDBPrefix), userDBSuffix)
		if slug != "" {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ArchiveUserDB closes the operator's connection and renames the file with
// the archived prefix so listings and logins stop seeing it.
func (m *Manager) ArchiveUserDB(username string) error {
	slug := ident.Slug(username)
	if err := m.closeUserDB(slug); err != nil {
		return err
	}

	src := m.UserDBPath(username)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		// Nothing to park; the account may never have logged an order.
		return nil
	}

	dst := m.ArchivedUserDBPath(username)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to archive user database: %w", err)
	}

	appLogger.Info("user database archived", "username", username, "path", dst)
	return nil
}

// RestoreUserDB renames an archived operator database back into service.
func (m *Manager) RestoreUserDB(username string) error {
	src := m.ArchivedUserDBPath(username)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}

	dst := m.UserDBPath(username)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to restore user database: %w", err)
	}

	appLogger.Info("user database restored", "username", username, "path", dst)
	return nil
}

// DeleteUserDB closes and removes the operator's database file, archived
// or not. Used by hard account deletion.
func (m *Manager) DeleteUserDB(username string) error {
	slug := ident.Slug(username)
	if err := m.closeUserDB(slug); err != nil {
		return err
	}

	for _, path := range []string{m.UserDBPath(username), m.ArchivedUserDBPath(username)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete user database: %w", err)
		}
	}
	return nil
}

// Close closes every open connection. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for slug, db := range m.userDBs {
		if err := closeGorm(db); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close user database %s: %w", slug, err)
		}
		delete(m.userDBs, slug)
	}

	if m.shared != nil {
		if err := closeGorm(m.shared); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close system database: %w", err)
		}
		m.shared = nil
	}
	return firstErr
}

func (m *Manager) open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	busyTimeout := m.cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}

	// DELETE journal mode keeps the files safe on network filesystems,
	// where WAL's shared-memory index does not work across hosts.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=DELETE&_synchronous=NORMAL&_foreign_keys=on",
		path, busyTimeout)

	gormLogger := gormlogger.New(
		&queryLogger{},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: DriverName,
		DSN:        dsn,
	}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// sqlite serializes writers anyway; a small pool keeps lock
	// contention between goroutines of this process down.
	maxIdle := m.cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 1
	}
	maxOpen := m.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (m *Manager) closeUserDB(slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.userDBs[slug]
	if !ok {
		return nil
	}
	delete(m.userDBs, slug)

	if err := closeGorm(db); err != nil {
		return fmt.Errorf("failed to close user database %s: %w", slug, err)
	}
	return nil
}

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func userDBFileName(slug string) string {
	return userDBPrefix + slug + userDBSuffix
}

// queryLogger routes gorm's log lines into the application logger.
type queryLogger struct{}

func (l *queryLogger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case strings.Contains(msg, "SLOW SQL"):
		appLogger.Warn("slow query", "details", msg)
	case strings.Contains(msg, "[error]"):
		appLogger.Error("database error", "details", msg)
	default:
		appLogger.Debug("database query", "details", msg)
	}
}
