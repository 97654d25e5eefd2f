package autosave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/notebook/internal/autosave"
	"github.com/calvinalkan/notebook/internal/testutil"
)

func Test_Debouncer_Runs_Only_Last_Action_When_Triggers_Arrive_Within_Window(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	d := autosave.New(600*time.Millisecond, clock)

	var saved []string

	for _, body := range []string{"a", "ab", "abc"} {
		d.Trigger(func() { saved = append(saved, body) })
		clock.Advance(200 * time.Millisecond)
	}

	require.Empty(t, saved, "nothing should run while edits keep arriving")
	require.True(t, d.Pending())

	clock.Advance(600 * time.Millisecond)

	assert.Equal(t, []string{"abc"}, saved)
	assert.False(t, d.Pending())
	assert.Equal(t, 0, clock.Pending(), "replaced timers must be stopped")
}

func Test_Debouncer_Runs_Action_After_Quiet_Period(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	d := autosave.New(600*time.Millisecond, clock)

	runs := 0
	d.Trigger(func() { runs++ })

	clock.Advance(599 * time.Millisecond)
	require.Equal(t, 0, runs, "must not run before the window elapses")

	clock.Advance(time.Millisecond)
	require.Equal(t, 1, runs)

	clock.Advance(time.Hour)
	require.Equal(t, 1, runs, "must run once")
}

func Test_Debouncer_Flush_Runs_Pending_Immediately_And_Cancels_Timer(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	d := autosave.New(0, clock)
	require.Equal(t, autosave.DefaultDelay, d.Delay())

	runs := 0
	d.Trigger(func() { runs++ })

	require.True(t, d.Flush())
	require.Equal(t, 1, runs)

	clock.Advance(time.Second)
	require.Equal(t, 1, runs, "flushed action must not run again from the timer")

	require.False(t, d.Flush(), "nothing pending after flush")
}

func Test_Debouncer_Cancel_Drops_Pending_Action(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	d := autosave.New(time.Second, clock)

	runs := 0
	d.Trigger(func() { runs++ })

	require.True(t, d.Cancel())
	require.False(t, d.Cancel())

	clock.Advance(time.Minute)
	require.Equal(t, 0, runs)
}

func Test_Debouncer_Works_With_Real_Clock(t *testing.T) {
	t.Parallel()

	d := autosave.New(10*time.Millisecond, nil)
	done := make(chan string, 1)

	d.Trigger(func() { done <- "first" })
	d.Trigger(func() { done <- "second" })

	select {
	case got := <-done:
		require.Equal(t, "second", got)
	case <-time.After(5 * time.Second):
		t.Fatal("debounced action never ran")
	}
}
