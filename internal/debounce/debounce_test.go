package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_RunsAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fired := make(chan struct{}, 1)

	Schedule(clock, time.Second, func() { fired <- struct{}{} })

	clock.Advance(999 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("fired early")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("did not fire")
	}
}

func TestSchedule_CancelPreventsCall(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32

	cancel := Schedule(clock, time.Second, func() { calls.Add(1) })
	assert.True(t, cancel())
	assert.False(t, cancel(), "second cancel is a no-op")

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer_CoalescesBurstToLastCall(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 500*time.Millisecond)
	got := make(chan int, 5)

	for i := 1; i <= 5; i++ {
		d.Trigger(func() { got <- i })
		clock.Advance(100 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	clock.Advance(500 * time.Millisecond)

	select {
	case v := <-got:
		assert.Equal(t, 5, v)
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	select {
	case v := <-got:
		t.Fatalf("unexpected extra call with %d", v)
	case <-time.After(30 * time.Millisecond):
	}
	assert.Eventually(t, func() bool { return !d.Pending() }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_SeparateWindowsEachFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 500*time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger(func() { calls.Add(1) })
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopDropsPendingAndFutureCalls(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 500*time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 500*time.Millisecond)
	var calls atomic.Int32

	assert.False(t, d.Flush())
	d.Trigger(func() { calls.Add(1) })
	assert.True(t, d.Flush())

	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
