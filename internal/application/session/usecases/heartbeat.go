package usecases

import (
	"context"

	"procdesk/internal/domain/registry"
	"procdesk/internal/shared/logger"
)

// HeartbeatCommand identifies the session the caller believes it holds.
type HeartbeatCommand struct {
	Username string
	Host     string
}

// HeartbeatResult reports whether the caller still owns the session. When
// Displaced is set the caller must stop heartbeating and shut its session
// down locally; DisplacedBy names the host that took over, if known.
type HeartbeatResult struct {
	Displaced   bool
	DisplacedBy string
}

// HeartbeatUseCase refreshes the caller's session row and detects takeover.
type HeartbeatUseCase struct {
	registry registry.Registry
	logger   logger.Interface
}

// NewHeartbeatUseCase creates a new instance of HeartbeatUseCase
func NewHeartbeatUseCase(reg registry.Registry, log logger.Interface) *HeartbeatUseCase {
	return &HeartbeatUseCase{registry: reg, logger: log}
}

// Execute reads the session row before touching it. A missing row or a row
// carrying a different host means another login displaced this one, and
// the heartbeat must not be written or the usurper's row would be revived.
func (uc *HeartbeatUseCase) Execute(ctx context.Context, cmd HeartbeatCommand) (*HeartbeatResult, error) {
	entry, err := uc.registry.ReadSession(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		uc.logger.Warnw("session row gone, treating as displaced", "username", cmd.Username)
		return &HeartbeatResult{Displaced: true}, nil
	}

	if entry.Value != cmd.Host {
		uc.logger.Warnw("session taken over by another host",
			"username", cmd.Username, "host", cmd.Host, "taken_by", entry.Value)
		return &HeartbeatResult{Displaced: true, DisplacedBy: entry.Value}, nil
	}

	if err := uc.registry.Heartbeat(ctx, cmd.Username); err != nil {
		return nil, err
	}
	return &HeartbeatResult{}, nil
}
