package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCutTime(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    CutTime
		wantErr bool
	}{
		{"empty is fine", "", "", false},
		{"whitespace only", "   ", "", false},
		{"already normalized", "01:30:00", "01:30:00", false},
		{"short hours get padded", "1:05:09", "01:05:09", false},
		{"large hours allowed", "120:00:00", "120:00:00", false},
		{"two fields get zero seconds", "10:30", "10:30:00", false},
		{"short two fields padded", "7:30", "07:30:00", false},
		{"single field rejected", "90", "", true},
		{"four fields rejected", "1:2:3:4", "", true},
		{"minutes overflow", "01:60:00", "", true},
		{"two-field minutes overflow", "01:60", "", true},
		{"seconds overflow", "01:00:61", "", true},
		{"letters rejected", "aa:bb:cc", "", true},
		{"negative minutes rejected", "01:-5:00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCutTime(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCutTimeSeconds(t *testing.T) {
	tests := []struct {
		cutTime CutTime
		want    int
	}{
		{"", 0},
		{"00:00:30", 30},
		{"00:02:00", 120},
		{"01:30:15", 5415},
		{"garbage", 0},
		{"1:2", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cutTime.Seconds(), "cut time %q", tt.cutTime)
	}
}
