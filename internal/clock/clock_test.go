package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiano/internal/clock"
)

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	var fired []string
	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "late") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early") })

	c.Advance(50 * time.Millisecond)
	require.Empty(t, fired)
	require.Equal(t, 2, c.Pending())

	c.Advance(time.Second)
	require.Equal(t, []string{"early", "late"}, fired)
	require.Equal(t, 0, c.Pending())
	require.Equal(t, time.Unix(0, 0).Add(1050*time.Millisecond), c.Now())
}

func TestFakeStopPreventsCallback(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	c.Advance(2 * time.Second)
	require.False(t, fired)
}

func TestFakeRearmedTimerFiresWithinSameAdvance(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 3 {
			c.AfterFunc(100*time.Millisecond, tick)
		}
	}
	c.AfterFunc(100*time.Millisecond, tick)

	c.Advance(250 * time.Millisecond)
	require.Equal(t, 2, ticks)
	c.Advance(100 * time.Millisecond)
	require.Equal(t, 3, ticks)
}
