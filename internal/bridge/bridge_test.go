package bridge

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reveille-app/reveille/internal/audio"
	"github.com/reveille-app/reveille/internal/db"
	"github.com/reveille-app/reveille/internal/engine"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
	"github.com/reveille-app/reveille/internal/repository"
	"github.com/reveille-app/reveille/internal/retry"
	"github.com/reveille-app/reveille/internal/scheduler"
)

type silentPlayer struct{}

func (silentPlayer) Start(string) error { return nil }
func (silentPlayer) Stop()              {}

func newTestBridge(t *testing.T) (*ActionBridge, *engine.Engine, *scheduler.TimerBridge, *Runner) {
	t.Helper()

	d, err := db.Init(":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(d.DB))
	t.Cleanup(func() { d.Close() })

	p, err := prefs.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	log := slog.Default()
	sched := scheduler.NewTimerBridge(model.PermissionStatus{
		ExactAlarm: true, BatteryUnrestricted: true, NotificationsEnabled: true,
	}, log)
	t.Cleanup(sched.CancelAll)

	eng := engine.New(
		repository.NewAlarmRepository(d, retry.Default()),
		repository.NewRecordingRepository(d, retry.Default()),
		p,
		audio.NewPipeline(t.TempDir(), log),
		silentPlayer{},
		sched,
		log,
		engine.Options{},
	)
	sched.Fire = eng.HandleFire

	runner := NewRunner(log)
	return New(eng, runner, log), eng, sched, runner
}

func saveRinging(t *testing.T, eng *engine.Engine) string {
	t.Helper()

	res, err := eng.SaveAlarm(context.Background(), &model.Alarm{
		Hour: 7, Minute: 30, AmPm: model.AmPmAM, Days: model.Days{"mon"}, Enabled: true,
	})
	require.NoError(t, err)

	eng.HandleFire(res.Alarm.ID+"-mon", "default")
	require.Equal(t, model.StateRinging, eng.State(res.Alarm.ID))
	return res.Alarm.ID
}

func TestStopActionIsIdempotent(t *testing.T) {
	b, eng, _, runner := newTestBridge(t)
	id := saveRinging(t, eng)

	handled, err := b.HandleAction(model.Action{Type: model.ActionStop, AlarmID: id})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, model.StateStopped, eng.State(id))

	// Redelivery against quiescent state: no-op, no error.
	handled, err = b.HandleAction(model.Action{Type: model.ActionStop, AlarmID: id})
	require.NoError(t, err)
	assert.False(t, handled)

	runner.Shutdown(time.Second)
}

func TestStopActionClearsPendingSnoozeTriggers(t *testing.T) {
	b, eng, sched, runner := newTestBridge(t)
	id := saveRinging(t, eng)

	res, err := eng.Snooze(id)
	require.NoError(t, err)
	require.True(t, res.Handled)
	require.Contains(t, sched.Armed(), res.TriggerID)

	// Snoozed trigger fires again, then the user stops for good.
	eng.HandleFire(res.TriggerID, "default")
	handled, err := b.HandleAction(model.Action{Type: model.ActionStop, AlarmID: id})
	require.NoError(t, err)
	require.True(t, handled)

	runner.Shutdown(time.Second)
	assert.NotContains(t, sched.Armed(), res.TriggerID)
}

func TestSnoozeActionIsIdempotent(t *testing.T) {
	b, eng, _, runner := newTestBridge(t)
	defer runner.Shutdown(time.Second)
	id := saveRinging(t, eng)

	handled, err := b.HandleAction(model.Action{Type: model.ActionSnooze, AlarmID: id})
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = b.HandleAction(model.Action{Type: model.ActionSnooze, AlarmID: id})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDefaultActionIsANoOp(t *testing.T) {
	b, eng, _, runner := newTestBridge(t)
	defer runner.Shutdown(time.Second)
	id := saveRinging(t, eng)

	handled, err := b.HandleAction(model.Action{Type: model.ActionDefault, AlarmID: id})
	require.NoError(t, err)
	assert.False(t, handled)

	// The alarm keeps ringing.
	assert.Equal(t, model.StateRinging, eng.State(id))
}

func TestMalformedActionsAreRejected(t *testing.T) {
	b, _, _, runner := newTestBridge(t)
	defer runner.Shutdown(time.Second)

	_, err := b.HandleAction(model.Action{Type: model.ActionStop})
	assert.Error(t, err)

	_, err = b.HandleAction(model.Action{Type: "RESTART", AlarmID: "x"})
	assert.Error(t, err)
}

func TestActionAgainstUnknownAlarm(t *testing.T) {
	b, _, _, runner := newTestBridge(t)
	defer runner.Shutdown(time.Second)

	// Nothing is ringing; a stray delivery must not error.
	handled, err := b.HandleAction(model.Action{Type: model.ActionStop, AlarmID: "never-existed"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRunnerWaitsForTasks(t *testing.T) {
	runner := NewRunner(slog.Default())

	done := make(chan struct{})
	runner.Go("probe", func(ctx context.Context) error {
		close(done)
		return nil
	})

	runner.Shutdown(time.Second)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}
