package migration

import (
	"embed"
	"fmt"

	"gorm.io/gorm"

	"procdesk/internal/infrastructure/persistence/models"
	"procdesk/internal/shared/logger"
)

//go:embed scripts/*.sql
var scriptsFS embed.FS

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// NewSharedManager creates the manager used for the system database.
func NewSharedManager() *Manager {
	return NewManagerWithStrategy(NewGooseStrategy())
}

// NewUserManager creates the manager used for per-operator databases.
func NewUserManager() *Manager {
	return NewManagerWithStrategy(NewGormAutoMigrateStrategy())
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Debugw("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(models))

	if err := m.strategy.Migrate(db, models...); err != nil {
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// UserModels lists the models every per-operator database carries.
func UserModels() []interface{} {
	return []interface{}{
		&models.OrderModel{},
	}
}
