package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMidnight(t *testing.T) {
	ts := time.Date(2025, 6, 10, 15, 42, 7, 123, time.UTC)
	got := GetMidnight(ts)
	assert.True(t, got.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
}

func TestYesterday(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)
	got := Yesterday(now)
	assert.True(t, got.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", FormatDate(got))

	_, err = ParseDate("06/10/2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-13-40")
	assert.Error(t, err)
}
