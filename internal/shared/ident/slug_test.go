package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugStable(t *testing.T) {
	assert.Equal(t, Slug("alice"), Slug("alice"))
	assert.NotEqual(t, Slug("alice"), Slug("bob"))
}

func TestSlugFoldsAccents(t *testing.T) {
	slug := Slug("José Conceição")
	assert.True(t, strings.HasPrefix(slug, "jose-conceicao-"), "got %q", slug)
}

func TestSlugDistinguishesFoldedCollisions(t *testing.T) {
	// Same ASCII fold, different originals: hash suffix keeps them apart.
	assert.NotEqual(t, Slug("José"), Slug("Jose"))
}

func TestSlugEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		username string
		prefix   string
	}{
		{"empty name", "", "user-"},
		{"symbols only", "!!!", "user-"},
		{"mixed separators", "Ana_Maria.Silva", "ana-maria-silva-"},
		{"uppercase folds down", "ALICE", "alice-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := Slug(tt.username)
			assert.True(t, strings.HasPrefix(slug, tt.prefix), "slug %q, want prefix %q", slug, tt.prefix)
		})
	}
}

func TestRecordIDRoundTrip(t *testing.T) {
	id := EncodeRecordID("alice-1a2b3c4d", 42)
	assert.Equal(t, "alice-1a2b3c4d:42", id)

	slug, recordID, ok := DecodeRecordID(id)
	require.True(t, ok)
	assert.Equal(t, "alice-1a2b3c4d", slug)
	assert.Equal(t, uint(42), recordID)
}

func TestDecodeRecordIDRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "noseparator", ":42", "slug:", "slug:notanumber", "slug:-1"} {
		_, _, ok := DecodeRecordID(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}
