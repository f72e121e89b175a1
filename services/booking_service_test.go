package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2026-08-28T17:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour(), "timestamp inputs are truncated to the day")
	assert.Equal(t, 28, got.Day())

	_, err = parseDate("28/08/2026")
	assert.Error(t, err)

	_, err = parseDate("")
	assert.Error(t, err)
}

func TestNewReferenceCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := newReferenceCode()
		require.True(t, strings.HasPrefix(code, "BK-"), "code %q", code)
		require.Len(t, code, len("BK-")+8)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}
