package registry

import (
	"context"
	"time"
)

// Registry is the data-access interface for the shared table. It is injected
// into anything needing session or command visibility; nothing reaches the
// table directly.
//
// Command delivery is at-least-once: a process can crash between acting on a
// command and consuming it, and a later poll will see the command again.
// Every command handler must therefore be idempotent.
type Registry interface {
	// RegisterSession upserts the SESSION entry for username. Last write
	// wins; there is no takeover detection at write time.
	RegisterSession(ctx context.Context, username, host string) error

	// Heartbeat refreshes last_updated on the caller's session entry.
	Heartbeat(ctx context.Context, username string) error

	// ReadSession returns the current SESSION entry for username, or nil
	// when absent or unreadable.
	ReadSession(ctx context.Context, username string) (*Entry, error)

	// RemoveSession deletes the SESSION entry for username.
	RemoveSession(ctx context.Context, username string) error

	// ListSessions returns all SESSION entries.
	ListSessions(ctx context.Context) ([]Entry, error)

	// IssueCommand upserts a COMMAND entry.
	IssueCommand(ctx context.Context, key, payload string) error

	// PollCommands returns the pending COMMAND entries whose key matches the
	// prefix. Each call is a fresh read; results are finite and unordered.
	PollCommands(ctx context.Context, keyPrefix string) ([]Entry, error)

	// Consume deletes a COMMAND entry after it has been acted upon.
	Consume(ctx context.Context, key string) error

	// ReapStaleSessions deletes SESSION entries whose heartbeat is older
	// than timeout and returns how many were removed.
	ReapStaleSessions(ctx context.Context, timeout time.Duration) (int, error)

	// ReapExpiredCommands garbage-collects COMMAND entries unconsumed past ttl.
	ReapExpiredCommands(ctx context.Context, ttl time.Duration) (int, error)
}
