package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowType_Valid(t *testing.T) {
	assert.True(t, WindowMinute.Valid())
	assert.True(t, WindowDay.Valid())
	assert.False(t, WindowType("hour").Valid())
	assert.False(t, WindowType("").Valid())
}

func TestWindowType_Duration(t *testing.T) {
	assert.Equal(t, time.Minute, WindowMinute.Duration())
	assert.Equal(t, 24*time.Hour, WindowDay.Duration())
}

func TestClock_MinuteWindowStart(t *testing.T) {
	clock := NewClock(time.UTC)

	start := clock.WindowStart(WindowMinute, time.Date(2024, 3, 15, 10, 42, 37, 912000000, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 15, 10, 42, 0, 0, time.UTC), start)
}

func TestClock_MinuteWindowDeterminism(t *testing.T) {
	// Any two instants within the same minute map to the same window.
	clock := NewClock(time.UTC)

	t1 := time.Date(2024, 3, 15, 10, 42, 0, 1, time.UTC)
	t2 := time.Date(2024, 3, 15, 10, 42, 59, 999999999, time.UTC)
	assert.Equal(t, clock.WindowStart(WindowMinute, t1), clock.WindowStart(WindowMinute, t2))

	t3 := time.Date(2024, 3, 15, 10, 43, 0, 0, time.UTC)
	assert.NotEqual(t, clock.WindowStart(WindowMinute, t1), clock.WindowStart(WindowMinute, t3))
}

func TestClock_DayWindowStart(t *testing.T) {
	clock := NewClock(time.UTC)

	start := clock.WindowStart(WindowDay, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
}

func TestClock_DayWindowStartInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	clock := NewClock(loc)

	// 16:30 UTC on March 15 is already March 16 in Tokyo.
	start := clock.WindowStart(WindowDay, time.Date(2024, 3, 15, 16, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, loc), start)
}

func TestClock_WindowsCoverEveryInstant(t *testing.T) {
	// Consecutive windows neither overlap nor leave gaps: each window's end
	// is exactly the next window's start, and every instant falls inside
	// the window computed for it.
	clock := NewClock(time.UTC)

	for _, window := range []WindowType{WindowMinute, WindowDay} {
		now := time.Date(2024, 12, 31, 23, 59, 30, 500000000, time.UTC)
		start := clock.WindowStart(window, now)
		end := clock.WindowEnd(window, start)

		assert.False(t, start.After(now), "window start must not be after the instant")
		assert.True(t, now.Before(end), "instant must fall before window end")
		assert.Equal(t, end, clock.WindowStart(window, end).Add(0), "window end must begin the next window")
	}
}

func TestClock_ZeroValueDefaultsToUTC(t *testing.T) {
	var clock Clock

	start := clock.WindowStart(WindowDay, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
}
