package repository

import (
	"sync"

	"procdesk/internal/domain/order"
	"procdesk/internal/infrastructure/database"
	"procdesk/internal/infrastructure/migration"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// OrderRepositoryProvider hands out per-operator order repositories,
// running the schema migration the first time each database file is
// touched. Cross-operator queries enumerate Slugs and merge.
type OrderRepositoryProvider struct {
	dbm      *database.Manager
	migrator *migration.Manager
	logger   logger.Interface

	mu    sync.Mutex
	repos map[string]order.Repository
}

// NewOrderRepositoryProvider creates a provider over the database manager.
func NewOrderRepositoryProvider(dbm *database.Manager, log logger.Interface) *OrderRepositoryProvider {
	return &OrderRepositoryProvider{
		dbm:      dbm,
		migrator: migration.NewUserManager(),
		logger:   log,
		repos:    make(map[string]order.Repository),
	}
}

// ForUser returns the repository for username, creating and migrating the
// database file on first use.
func (p *OrderRepositoryProvider) ForUser(username string) (order.Repository, error) {
	return p.ForSlug(ident.Slug(username))
}

// ForSlug is ForUser keyed by slug, for iterating files found on disk.
func (p *OrderRepositoryProvider) ForSlug(slug string) (order.Repository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if repo, ok := p.repos[slug]; ok {
		return repo, nil
	}

	db, err := p.dbm.UserDBBySlug(slug)
	if err != nil {
		return nil, err
	}
	if err := p.migrator.Migrate(db, migration.UserModels()...); err != nil {
		return nil, err
	}

	repo := NewOrderRepository(db, p.logger)
	p.repos[slug] = repo
	return repo, nil
}

// Slugs lists the operators that currently have a database file.
func (p *OrderRepositoryProvider) Slugs() ([]string, error) {
	return p.dbm.UserSlugs()
}

// Evict drops the cached repository for username, used after the backing
// file is archived or deleted.
func (p *OrderRepositoryProvider) Evict(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.repos, ident.Slug(username))
}
