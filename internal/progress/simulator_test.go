package progress_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/progress"
	"github.com/spigell/resume-matcher/internal/progress/progresstest"
)

func TestRunAdvancesToCeilingAndStopsTicking(t *testing.T) {
	t.Parallel()

	sched := progresstest.NewScheduler()
	sim, err := progress.New(nil, sched)
	require.NoError(t, err)

	var values []progress.Value
	run, err := sim.Start(func(r *progress.Run) {
		if v, ok := r.Advance(); ok {
			values = append(values, v)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, progress.Zero, run.Value())

	for i := 0; i < 20; i++ {
		sched.Tick()
	}

	assert.Equal(t, []progress.Value{10, 20, 30, 40, 50, 60, 70, 80, 90}, values)
	assert.Equal(t, progress.Value(90), run.Value())
	assert.Zero(t, sched.ActiveRepeats(), "the repeating task must end at the ceiling")
	assert.False(t, run.Stopped())
}

func TestRunCapsUnevenSteps(t *testing.T) {
	t.Parallel()

	sched := progresstest.NewScheduler()
	sim, err := progress.New(&progress.Config{Step: 40, Ceiling: 90}, sched)
	require.NoError(t, err)

	run, err := sim.Start(func(r *progress.Run) { r.Advance() })
	require.NoError(t, err)

	sched.Tick()
	sched.Tick()
	sched.Tick()
	sched.Tick()

	assert.Equal(t, progress.Value(90), run.Value())
}

func TestStopHaltsImmediately(t *testing.T) {
	t.Parallel()

	sched := progresstest.NewScheduler()
	sim, err := progress.New(nil, sched)
	require.NoError(t, err)

	run, err := sim.Start(func(r *progress.Run) { r.Advance() })
	require.NoError(t, err)

	sched.Tick()
	run.Stop()
	run.Stop()

	assert.True(t, run.Stopped())
	assert.Zero(t, sched.Tick())

	v, ok := run.Advance()
	assert.False(t, ok)
	assert.Equal(t, progress.Value(10), v)
}

func TestStartRefusesConcurrentRuns(t *testing.T) {
	t.Parallel()

	sim, err := progress.New(nil, progresstest.NewScheduler())
	require.NoError(t, err)

	first, err := sim.Start(func(*progress.Run) {})
	require.NoError(t, err)

	_, err = sim.Start(func(*progress.Run) {})
	require.ErrorIs(t, err, progress.ErrAlreadyRunning)

	first.Stop()

	second, err := sim.Start(func(*progress.Run) {})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *progress.Config
	}{
		{name: "negative interval", cfg: &progress.Config{Interval: -time.Second}},
		{name: "negative step", cfg: &progress.Config{Step: -1}},
		{name: "ceiling reaches complete", cfg: &progress.Config{Ceiling: 100}},
		{name: "negative ceiling", cfg: &progress.Config{Ceiling: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := progress.New(tt.cfg, nil)
			require.Error(t, err)
		})
	}
}

func TestRealSchedulerFiresAndCancels(t *testing.T) {
	t.Parallel()

	sched := progress.NewScheduler()

	var ticks atomic.Int32
	cancel := sched.Every(time.Millisecond, func() { ticks.Add(1) })
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	cancel()

	fired := make(chan struct{})
	sched.After(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("after task did not fire")
	}

	var late atomic.Bool
	stop := sched.After(time.Hour, func() { late.Store(true) })
	stop()
	assert.False(t, late.Load())
}
