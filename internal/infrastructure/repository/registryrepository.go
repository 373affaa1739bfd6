package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procdesk/internal/domain/registry"
	"procdesk/internal/infrastructure/persistence/models"
	"procdesk/internal/shared/config"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/logger"
)

// RegistryRepository implements the coordination registry over the shared
// system database. Writes from concurrent processes can collide on sqlite
// file locks, so every statement runs under a bounded retry loop; callers
// see a transient-unavailable error once the budget is exhausted.
type RegistryRepository struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
	now      func() time.Time
	logger   logger.Interface
}

// NewRegistryRepository creates a registry repository using the retry
// budget from the coordination config.
func NewRegistryRepository(db *gorm.DB, cfg *config.CoordinationConfig, log logger.Interface) registry.Registry {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &RegistryRepository{
		db:       db,
		attempts: attempts,
		backoff:  cfg.RetryBackoff,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

func (r *RegistryRepository) RegisterSession(ctx context.Context, username, host string) error {
	return r.upsert(ctx, registry.Entry{
		Type:  registry.EntryTypeSession,
		Key:   username,
		Value: host,
	})
}

func (r *RegistryRepository) Heartbeat(ctx context.Context, username string) error {
	return r.withRetry(ctx, "heartbeat", func() error {
		result := r.db.WithContext(ctx).
			Model(&models.RegistryEntryModel{}).
			Where("type = ? AND key = ?", registry.EntryTypeSession, username).
			Update("last_updated", r.now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *RegistryRepository) ReadSession(ctx context.Context, username string) (*registry.Entry, error) {
	var model models.RegistryEntryModel
	err := r.withRetry(ctx, "read session", func() error {
		return r.db.WithContext(ctx).
			Where("type = ? AND key = ?", registry.EntryTypeSession, username).
			First(&model).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	entry := toEntry(model)
	return &entry, nil
}

func (r *RegistryRepository) RemoveSession(ctx context.Context, username string) error {
	return r.delete(ctx, registry.EntryTypeSession, username)
}

func (r *RegistryRepository) ListSessions(ctx context.Context) ([]registry.Entry, error) {
	return r.list(ctx, registry.EntryTypeSession, "")
}

func (r *RegistryRepository) IssueCommand(ctx context.Context, key, payload string) error {
	return r.upsert(ctx, registry.Entry{
		Type:  registry.EntryTypeCommand,
		Key:   key,
		Value: payload,
	})
}

func (r *RegistryRepository) PollCommands(ctx context.Context, keyPrefix string) ([]registry.Entry, error) {
	return r.list(ctx, registry.EntryTypeCommand, keyPrefix)
}

func (r *RegistryRepository) Consume(ctx context.Context, key string) error {
	return r.delete(ctx, registry.EntryTypeCommand, key)
}

func (r *RegistryRepository) ReapStaleSessions(ctx context.Context, timeout time.Duration) (int, error) {
	return r.reap(ctx, registry.EntryTypeSession, timeout)
}

func (r *RegistryRepository) ReapExpiredCommands(ctx context.Context, ttl time.Duration) (int, error) {
	return r.reap(ctx, registry.EntryTypeCommand, ttl)
}

func (r *RegistryRepository) upsert(ctx context.Context, entry registry.Entry) error {
	model := models.RegistryEntryModel{
		Type:        string(entry.Type),
		Key:         entry.Key,
		Value:       entry.Value,
		LastUpdated: r.now(),
	}
	return r.withRetry(ctx, "upsert", func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "type"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "last_updated"}),
			}).
			Create(&model).Error
	})
}

func (r *RegistryRepository) delete(ctx context.Context, entryType registry.EntryType, key string) error {
	return r.withRetry(ctx, "delete", func() error {
		return r.db.WithContext(ctx).
			Where("type = ? AND key = ?", entryType, key).
			Delete(&models.RegistryEntryModel{}).Error
	})
}

func (r *RegistryRepository) list(ctx context.Context, entryType registry.EntryType, keyPrefix string) ([]registry.Entry, error) {
	var ms []models.RegistryEntryModel
	err := r.withRetry(ctx, "list", func() error {
		query := r.db.WithContext(ctx).Where("type = ?", entryType)
		if keyPrefix != "" {
			query = query.Where("key LIKE ? ESCAPE '\\'", escapeLike(keyPrefix)+"%")
		}
		return query.Order("key").Find(&ms).Error
	})
	if err != nil {
		return nil, err
	}

	entries := make([]registry.Entry, 0, len(ms))
	for _, model := range ms {
		entries = append(entries, toEntry(model))
	}
	return entries, nil
}

func (r *RegistryRepository) reap(ctx context.Context, entryType registry.EntryType, maxAge time.Duration) (int, error) {
	cutoff := r.now().Add(-maxAge)
	var removed int64
	err := r.withRetry(ctx, "reap", func() error {
		result := r.db.WithContext(ctx).
			Where("type = ? AND last_updated < ?", entryType, cutoff).
			Delete(&models.RegistryEntryModel{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// withRetry runs op, retrying with a linear backoff while sqlite reports
// lock contention. Other errors pass through untouched.
func (r *RegistryRepository) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		r.logger.Debugw("registry contention, retrying",
			"op", op, "attempt", attempt, "error", err)

		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
	r.logger.Warnw("registry operation gave up after retries", "op", op, "error", err)
	return apperrors.NewUnavailableError(
		fmt.Sprintf("registry %s failed after %d attempts", op, r.attempts), err.Error())
}

func toEntry(model models.RegistryEntryModel) registry.Entry {
	return registry.Entry{
		Type:        registry.EntryType(model.Type),
		Key:         model.Key,
		Value:       model.Value,
		LastUpdated: model.LastUpdated,
	}
}

func isBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "busy")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
