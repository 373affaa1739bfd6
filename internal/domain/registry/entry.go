// Package registry models the shared rendezvous table cooperating processes
// use to see each other's logged-in users and to exchange administrative
// commands. The table is the whole wire format: four columns (type, key,
// value, last_updated) that every version of the application must keep
// interoperable.
package registry

import (
	"strings"
	"time"
)

// EntryType discriminates the two kinds of rows in the shared table.
type EntryType string

const (
	// EntryTypeSession asserts a user is logged in: key is the username,
	// value the host identifier.
	EntryTypeSession EntryType = "SESSION"

	// EntryTypeCommand is a pending cross-process instruction: key is the
	// command id, value an opaque payload.
	EntryTypeCommand EntryType = "COMMAND"
)

// Well-known command key prefixes.
const (
	// CommandForceLogoutPrefix + username targets one user's session.
	CommandForceLogoutPrefix = "force_logout_"

	// CommandShutdownAll asks every running instance to exit.
	CommandShutdownAll = "shutdown_all"
)

// Entry is one row of the shared table.
//
// Session registration is overwrite-on-conflict: a second login for the same
// username silently takes over the row, and the displaced process only
// notices on its next heartbeat when the stored host no longer matches its
// own. Row writes are atomic but read-then-decide-then-write is not; that
// race is part of the contract, not a bug to fix here.
type Entry struct {
	Type        EntryType
	Key         string
	Value       string
	LastUpdated time.Time
}

// IsStale reports whether the entry's heartbeat is older than timeout at the
// given instant. An entry aged exactly timeout is not stale.
func (e Entry) IsStale(now time.Time, timeout time.Duration) bool {
	return now.Sub(e.LastUpdated) > timeout
}

// ForceLogoutKey builds the command key targeting one user.
func ForceLogoutKey(username string) string {
	return CommandForceLogoutPrefix + username
}

// SessionPayload encodes the "username|hostname" payload carried by COMMAND
// entries. SESSION entries store the bare host in value instead.
func SessionPayload(username, host string) string {
	return username + "|" + host
}

// ParseSessionPayload splits a "username|hostname" payload. A malformed
// payload yields ok=false and the caller must treat the command as absent.
func ParseSessionPayload(payload string) (username, host string, ok bool) {
	username, host, ok = strings.Cut(payload, "|")
	if !ok || username == "" {
		return "", "", false
	}
	return username, host, true
}
