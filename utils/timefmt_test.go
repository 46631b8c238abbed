package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestampAcceptedForms(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	cases := map[string]string{
		"2030-01-07T09:00:00Z":      "2030-01-07 12:00",
		"2030-01-07T09:00:00+03:00": "2030-01-07 09:00",
		"2030-01-07T09:00:00.000Z":  "2030-01-07 12:00",
		"2030-01-07T09:00:00":       "2030-01-07 09:00",
		"2030-01-07T09:00":          "2030-01-07 09:00",
		"2030-01-07 09:00:45":       "2030-01-07 09:00",
		" 2030-01-07 09:00 ":        "2030-01-07 09:00",
	}
	for raw, want := range cases {
		got, err := NormalizeTimestamp(raw, nairobi)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestNormalizeTimestampRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "next tuesday", "2030-13-01 09:00", "09:00"} {
		_, err := NormalizeTimestamp(raw, time.UTC)
		assert.Error(t, err, raw)
	}
}

func TestCanonicalArithmetic(t *testing.T) {
	end, err := AddMinutes("2030-01-07 23:30", 60)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-08 00:30", end)

	n, err := WindowMinutes("2030-01-07 14:00", "2030-01-07 16:30")
	require.NoError(t, err)
	assert.Equal(t, 150, n)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	assert.True(t, Overlaps("2030-01-07 09:00", "2030-01-07 10:00", "2030-01-07 09:30", "2030-01-07 10:30"))
	assert.False(t, Overlaps("2030-01-07 09:00", "2030-01-07 10:00", "2030-01-07 10:00", "2030-01-07 11:00"))
	assert.True(t, Overlaps("2030-01-07 09:00", "2030-01-07 12:00", "2030-01-07 10:00", "2030-01-07 11:00"))
}
