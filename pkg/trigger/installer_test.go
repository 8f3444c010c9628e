package trigger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/todoroll/pkg/core"
	"github.com/aretw0/todoroll/pkg/trigger"
)

type call struct {
	settings core.Settings
	force    bool
}

type fakeRoller struct {
	mu    sync.Mutex
	calls []call
	fired chan call
}

func newFakeRoller() *fakeRoller {
	return &fakeRoller{fired: make(chan call, 64)}
}

func (f *fakeRoller) Roll(ctx context.Context, s core.Settings, force bool) (core.Result, error) {
	c := call{settings: s, force: force}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.fired <- c
	return core.Result{Outcome: core.OutcomeUpToDate}, nil
}

func (f *fakeRoller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitCall(t *testing.T, f *fakeRoller) call {
	t.Helper()
	select {
	case c := <-f.fired:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for rollover check")
		return call{}
	}
}

func weekly() core.Settings {
	return core.DefaultSettings()
}

func onClick() core.Settings {
	s := core.DefaultSettings()
	s.GenerationMode = core.ModeOnClick
	return s
}

func TestStartRunsCheckWhenReady(t *testing.T) {
	ctx := context.Background()
	roller := newFakeRoller()
	ready := make(chan struct{})
	inst := trigger.New(roller, trigger.WithReady(ready), trigger.WithReadyTimeout(time.Hour))

	require.NoError(t, inst.Start(ctx, weekly()))
	defer inst.Stop(ctx)

	assert.Zero(t, roller.count(), "no check before ready")
	close(ready)

	c := waitCall(t, roller)
	assert.False(t, c.force)
	assert.Equal(t, core.ModeWeekly, c.settings.GenerationMode)
}

func TestStartFallsBackOnTimeout(t *testing.T) {
	ctx := context.Background()
	roller := newFakeRoller()
	inst := trigger.New(roller, trigger.WithReadyTimeout(20*time.Millisecond))

	require.NoError(t, inst.Start(ctx, weekly()))
	defer inst.Stop(ctx)

	waitCall(t, roller)
	state := inst.State().(trigger.InstallerState)
	assert.Equal(t, "ready-timeout", state.LastReason)
}

func TestRecurringCheck(t *testing.T) {
	ctx := context.Background()
	roller := newFakeRoller()
	inst := trigger.New(roller, trigger.WithReadyTimeout(time.Hour), trigger.WithInterval(10*time.Millisecond))

	require.NoError(t, inst.Start(ctx, weekly()))
	waitCall(t, roller)
	waitCall(t, roller)
	require.NoError(t, inst.Stop(ctx))

	// Drain anything in flight at Stop, then nothing else fires.
	time.Sleep(30 * time.Millisecond)
	n := roller.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, roller.count())
}

func TestOnClickInstallsManualTriggerOnly(t *testing.T) {
	ctx := context.Background()
	roller := newFakeRoller()
	ready := make(chan struct{})
	close(ready)
	inst := trigger.New(roller, trigger.WithReady(ready), trigger.WithInterval(5*time.Millisecond))

	require.NoError(t, inst.Start(ctx, onClick()))
	defer inst.Stop(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, roller.count(), "onClick installs no timers")

	_, err := inst.Click(ctx)
	require.NoError(t, err)
	c := waitCall(t, roller)
	assert.True(t, c.force)

	state := inst.State().(trigger.InstallerState)
	assert.True(t, state.Manual)
	assert.Empty(t, state.Workers)
}

func TestClickRequiresOnClickMode(t *testing.T) {
	ctx := context.Background()
	inst := trigger.New(newFakeRoller(), trigger.WithReadyTimeout(time.Hour))

	_, err := inst.Click(ctx)
	assert.ErrorIs(t, err, trigger.ErrNotInstalled)

	require.NoError(t, inst.Start(ctx, weekly()))
	defer inst.Stop(ctx)
	_, err = inst.Click(ctx)
	assert.ErrorIs(t, err, trigger.ErrClickDisabled)
}

func TestReinstallTearsDownFirst(t *testing.T) {
	ctx := context.Background()
	roller := newFakeRoller()
	inst := trigger.New(roller, trigger.WithReadyTimeout(time.Hour), trigger.WithInterval(10*time.Millisecond))

	assert.ErrorIs(t, inst.Reinstall(ctx, weekly()), trigger.ErrNotInstalled)

	require.NoError(t, inst.Start(ctx, weekly()))
	assert.ErrorIs(t, inst.Start(ctx, weekly()), trigger.ErrAlreadyInstalled)
	waitCall(t, roller)

	require.NoError(t, inst.Reinstall(ctx, onClick()))
	time.Sleep(30 * time.Millisecond)
	n := roller.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, roller.count(), "old timer removed on reinstall")

	state := inst.State().(trigger.InstallerState)
	assert.Equal(t, core.ModeOnClick, state.Mode)
	assert.Equal(t, 1, state.Reinstalls)

	require.NoError(t, inst.Reinstall(ctx, weekly()))
	_, err := inst.Click(ctx)
	assert.ErrorIs(t, err, trigger.ErrClickDisabled, "manual trigger removed on reinstall")
	waitCall(t, roller)
	require.NoError(t, inst.Stop(ctx))
}

func TestStartNormalizesSettings(t *testing.T) {
	ctx := context.Background()
	inst := trigger.New(newFakeRoller(), trigger.WithReadyTimeout(time.Hour))

	require.NoError(t, inst.Start(ctx, core.Settings{GenerationMode: core.ModeEveryNDays, NDays: 0}))
	defer inst.Stop(ctx)
	assert.Equal(t, 1, inst.Settings().NDays)
}
