// Package session coordinates logged-in instances through the shared
// registry: one row per live session, command rows for administrative
// instructions, liveness by heartbeat.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"procdesk/internal/application/session/usecases"
	"procdesk/internal/domain/registry"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/goroutine"
	"procdesk/internal/shared/logger"
)

// WatcherCallbacks receive the events a running session must react to.
// They are invoked from the watcher's goroutines and must not block.
type WatcherCallbacks struct {
	// OnDisplaced fires once when another login takes the session over.
	// host names the usurper when known.
	OnDisplaced func(host string)

	// OnForceLogout fires when an administrator forces this user out. The
	// command is consumed before the callback, so a handler that crashes
	// mid-shutdown will not see it again; logging out is the idempotent
	// part that matters.
	OnForceLogout func()

	// OnShutdown fires when a shutdown-all command is seen. The command
	// row is left in place for other instances and expires by TTL.
	OnShutdown func()
}

// Watcher drives one session's background loops: the heartbeat that keeps
// the registry row fresh, and the command poll that notices force-logout
// and shutdown requests. Transient registry errors are tolerated; the
// loops keep their cadence and try again next tick.
type Watcher struct {
	heartbeat *usecases.HeartbeatUseCase
	registry  registry.Registry

	username string
	host     string
	runID    string

	heartbeatInterval time.Duration
	pollInterval      time.Duration

	callbacks WatcherCallbacks
	logger    logger.Interface

	stopOnce sync.Once
	stopped  chan struct{}
	done     sync.WaitGroup
}

// NewWatcher creates a watcher for one logged-in user on this host. The
// run id tags every log line of this process instance so overlapping
// instances on a shared log sink stay distinguishable.
func NewWatcher(
	heartbeat *usecases.HeartbeatUseCase,
	reg registry.Registry,
	username, host string,
	heartbeatInterval, pollInterval time.Duration,
	callbacks WatcherCallbacks,
	log logger.Interface,
) *Watcher {
	runID := uuid.NewString()
	return &Watcher{
		heartbeat:         heartbeat,
		registry:          reg,
		username:          username,
		host:              host,
		runID:             runID,
		heartbeatInterval: heartbeatInterval,
		pollInterval:      pollInterval,
		callbacks:         callbacks,
		logger:            log.With("run_id", runID, "username", username),
		stopped:           make(chan struct{}),
	}
}

// RunID returns the identifier tagging this watcher's log lines.
func (w *Watcher) RunID() string {
	return w.runID
}

// Start launches the background loops. They end when ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.done.Add(2)
	goroutine.SafeGo(w.logger, "session.heartbeat", func() {
		defer w.done.Done()
		w.heartbeatLoop(ctx)
	})
	goroutine.SafeGo(w.logger, "session.commandpoll", func() {
		defer w.done.Done()
		w.pollLoop(ctx)
	})
	w.logger.Infow("session watcher started",
		"heartbeat_interval", w.heartbeatInterval,
		"poll_interval", w.pollInterval)
}

// Stop ends the loops without touching the registry. Removing the session
// row is the caller's decision; a displaced session must not remove it.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
	w.done.Wait()
}

func (w *Watcher) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopped:
			return
		case <-ticker.C:
		}

		result, err := w.heartbeat.Execute(ctx, usecases.HeartbeatCommand{
			Username: w.username,
			Host:     w.host,
		})
		if err != nil {
			if apperrors.IsUnavailable(err) {
				w.logger.Warnw("heartbeat skipped, registry unavailable", "error", err)
				continue
			}
			w.logger.Errorw("heartbeat failed", "error", err)
			continue
		}

		if result.Displaced {
			w.notifyDisplaced(result.DisplacedBy)
			return
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	myKey := registry.ForceLogoutKey(w.username)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopped:
			return
		case <-ticker.C:
		}

		pending, err := w.registry.PollCommands(ctx, "")
		if err != nil {
			if apperrors.IsUnavailable(err) {
				w.logger.Warnw("command poll skipped, registry unavailable", "error", err)
				continue
			}
			w.logger.Errorw("command poll failed", "error", err)
			continue
		}

		for _, cmd := range pending {
			switch cmd.Key {
			case myKey:
				w.logger.Infow("force logout received")
				if err := w.registry.Consume(ctx, cmd.Key); err != nil {
					w.logger.Warnw("failed to consume force logout, will retry next poll", "error", err)
					continue
				}
				if w.callbacks.OnForceLogout != nil {
					w.callbacks.OnForceLogout()
				}
				return
			case registry.CommandShutdownAll:
				w.logger.Infow("shutdown-all received")
				if w.callbacks.OnShutdown != nil {
					w.callbacks.OnShutdown()
				}
				return
			}
		}
	}
}

func (w *Watcher) notifyDisplaced(host string) {
	w.logger.Warnw("session displaced", "taken_by", host)
	if w.callbacks.OnDisplaced != nil {
		w.callbacks.OnDisplaced(host)
	}
}
