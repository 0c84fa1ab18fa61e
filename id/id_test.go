package id

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestAtRoundTripsTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 17, 14, 30, 0, 0, time.UTC)
	got, ok := Time(At(ts))
	require.True(t, ok)
	assert.True(t, got.Equal(ts))

	_, ok = Time("not-an-id")
	assert.False(t, ok)
}

func TestDeviceID(t *testing.T) {
	t.Parallel()

	a, b := DeviceID(), DeviceID()
	assert.True(t, strings.HasPrefix(a, "device_"))
	assert.Len(t, a, len("device_")+9)
	assert.NotEqual(t, a, b)
}
