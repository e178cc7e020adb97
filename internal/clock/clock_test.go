package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestCivil_ConvertsToConfiguredZone(t *testing.T) {
	// 2025-07-04 23:30 UTC is already 2025-07-05 08:30 in Seoul.
	instant := time.Date(2025, time.July, 4, 23, 30, 0, 0, time.UTC)

	cv, err := New("Asia/Seoul", WithClock(fixed(instant)))
	require.NoError(t, err)

	now := cv.Now()
	assert.Equal(t, 8, now.Hour())
	assert.Equal(t, 30, now.Minute())
	assert.Equal(t, "2025-07-05", cv.Today().String())
	assert.Equal(t, "2025-07-05 08:30:00", cv.Stamp())
	assert.Equal(t, 2025, cv.Year())
}

func TestCivil_RejectsUnknownZone(t *testing.T) {
	_, err := New("Mars/Olympus")
	require.Error(t, err)
}

func TestCivil_DefaultsToWallClock(t *testing.T) {
	cv, err := New("UTC")
	require.NoError(t, err)

	before := time.Now().UTC()
	now := cv.Now()
	after := time.Now().UTC()

	assert.False(t, now.Before(before.Truncate(time.Second)))
	assert.False(t, now.After(after.Add(time.Second)))
}
