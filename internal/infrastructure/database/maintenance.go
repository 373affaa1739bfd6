package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	appLogger "procdesk/internal/shared/logger"
)

const (
	maintenanceStampFile = ".last_optimization"
	maintenanceInterval  = 7 * 24 * time.Hour
)

// RunMaintenance refreshes sqlite's query planner statistics across every
// open-able database file, at most once per week. The stamp file in the
// data directory is shared by all cooperating processes, so whichever one
// starts first after the interval does the work.
func (m *Manager) RunMaintenance(now time.Time) error {
	stamp := filepath.Join(m.cfg.DataDir, maintenanceStampFile)
	if last, ok := readStamp(stamp); ok && now.Sub(last) < maintenanceInterval {
		return nil
	}

	if err := m.optimizeAll(); err != nil {
		return err
	}

	if err := writeStamp(stamp, now); err != nil {
		appLogger.Warn("failed to record maintenance stamp", "error", err)
	}
	appLogger.Info("database maintenance completed")
	return nil
}

func (m *Manager) optimizeAll() error {
	shared, err := m.Shared()
	if err != nil {
		return err
	}
	if err := optimize("system", shared); err != nil {
		return err
	}

	slugs, err := m.UserSlugs()
	if err != nil {
		return err
	}
	for _, slug := range slugs {
		db, err := m.UserDBBySlug(slug)
		if err != nil {
			appLogger.Warn("skipping maintenance for unreachable user database",
				"slug", slug, "error", err)
			continue
		}
		if err := optimize(slug, db); err != nil {
			return err
		}
	}
	return nil
}

func optimize(label string, db *gorm.DB) error {
	for _, stmt := range []string{"ANALYZE", "PRAGMA optimize"} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("maintenance statement %q failed on %s: %w", stmt, label, err)
		}
	}
	return nil
}

func readStamp(path string) (time.Time, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func writeStamp(path string, now time.Time) error {
	return os.WriteFile(path, []byte(strconv.FormatInt(now.Unix(), 10)), 0o644)
}
