package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC)
	timeout := 2 * time.Minute

	tests := []struct {
		name        string
		lastUpdated time.Time
		want        bool
	}{
		{"fresh entry", now.Add(-30 * time.Second), false},
		{"exactly at timeout is not stale", now.Add(-timeout), false},
		{"just past timeout is stale", now.Add(-timeout - time.Nanosecond), true},
		{"long dead", now.Add(-time.Hour), true},
		{"future timestamp is not stale", now.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Type: EntryTypeSession, Key: "alice", Value: "A1", LastUpdated: tt.lastUpdated}
			assert.Equal(t, tt.want, e.IsStale(now, timeout))
		})
	}
}

func TestSessionPayloadRoundTrip(t *testing.T) {
	payload := SessionPayload("alice", "B1")
	assert.Equal(t, "alice|B1", payload)

	username, host, ok := ParseSessionPayload(payload)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "B1", host)
}

func TestParseSessionPayloadMalformed(t *testing.T) {
	for _, raw := range []string{"", "nodelimiter", "|hostonly"} {
		_, _, ok := ParseSessionPayload(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}

	// missing host still names a user; the command stays actionable
	username, host, ok := ParseSessionPayload("alice|")
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "", host)
}

func TestForceLogoutKey(t *testing.T) {
	assert.Equal(t, "force_logout_alice", ForceLogoutKey("alice"))
}
