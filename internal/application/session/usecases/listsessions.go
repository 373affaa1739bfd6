package usecases

import (
	"context"
	"time"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/logger"
)

// SessionInfo is one row of the session listing.
type SessionInfo struct {
	Username    string
	Host        string
	LastUpdated time.Time
	Stale       bool
}

// ListSessionsUseCase reports every registered session, flagging the ones
// whose heartbeat has gone quiet.
type ListSessionsUseCase struct {
	registry       registry.Registry
	sessionTimeout time.Duration
	now            func() time.Time
	logger         logger.Interface
}

// NewListSessionsUseCase creates a new instance of ListSessionsUseCase
func NewListSessionsUseCase(reg registry.Registry, sessionTimeout time.Duration, log logger.Interface) *ListSessionsUseCase {
	return &ListSessionsUseCase{
		registry:       reg,
		sessionTimeout: sessionTimeout,
		now:            func() time.Time { return time.Now().UTC() },
		logger:         log,
	}
}

// Execute lists sessions. Rows with an unreadable payload are shown with
// an empty host rather than dropped, so an admin can still spot them.
func (uc *ListSessionsUseCase) Execute(ctx context.Context) ([]SessionInfo, error) {
	entries, err := uc.registry.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	infos := make([]SessionInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, SessionInfo{
			Username:    entry.Key,
			Host:        entry.Value,
			LastUpdated: entry.LastUpdated,
			Stale:       entry.IsStale(now, uc.sessionTimeout),
		})
	}
	return infos, nil
}
