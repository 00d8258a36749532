package scheduler

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reveille-app/reveille/internal/model"
)

func allGranted() model.PermissionStatus {
	return model.PermissionStatus{ExactAlarm: true, BatteryUnrestricted: true, NotificationsEnabled: true}
}

func TestScheduleAndCancel(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())
	defer b.CancelAll()

	ok := b.Schedule("al-1-mon", time.Now().Add(time.Hour), "default", "7:30 AM")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"al-1-mon"}, b.Armed())

	b.Cancel("al-1-mon")
	assert.Empty(t, b.Armed())

	// Cancelling an unknown trigger is a no-op.
	b.Cancel("al-1-mon")
}

func TestScheduleReplacesExistingTrigger(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())
	defer b.CancelAll()

	require.True(t, b.Schedule("al-1-mon", time.Now().Add(time.Hour), "a", ""))
	require.True(t, b.Schedule("al-1-mon", time.Now().Add(2*time.Hour), "b", ""))

	assert.Len(t, b.Armed(), 1)
}

func TestScheduleRefusesPastInstant(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())

	assert.False(t, b.Schedule("al-1-mon", time.Now().Add(-time.Minute), "default", ""))
	assert.False(t, b.Schedule("al-1-mon", time.Now(), "default", ""))
	assert.Empty(t, b.Armed())
}

func TestScheduleDeniedWithoutExactAlarmPermission(t *testing.T) {
	perms := allGranted()
	perms.ExactAlarm = false
	b := NewTimerBridge(perms, slog.Default())

	assert.False(t, b.Schedule("al-1-mon", time.Now().Add(time.Hour), "default", ""))
	assert.Empty(t, b.Armed())
}

func TestFireInvokesCallbackAndClearsTrigger(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())
	defer b.CancelAll()

	var mu sync.Mutex
	var gotTrigger, gotAudio string
	done := make(chan struct{})
	b.Fire = func(triggerID, audioURI string) {
		mu.Lock()
		gotTrigger, gotAudio = triggerID, audioURI
		mu.Unlock()
		close(done)
	}

	require.True(t, b.Schedule("al-1-mon", time.Now().Add(20*time.Millisecond), "/tmp/v.m4a", ""))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not fire")
	}

	mu.Lock()
	assert.Equal(t, "al-1-mon", gotTrigger)
	assert.Equal(t, "/tmp/v.m4a", gotAudio)
	mu.Unlock()

	assert.Empty(t, b.Armed())
}

func TestCancelAll(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())

	require.True(t, b.Schedule("al-1-mon", time.Now().Add(time.Hour), "", ""))
	require.True(t, b.Schedule("al-1-wed", time.Now().Add(time.Hour), "", ""))
	require.True(t, b.Schedule("al-2-fri", time.Now().Add(time.Hour), "", ""))

	b.CancelAll()
	assert.Empty(t, b.Armed())
}

func TestStartImmediate(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())

	done := make(chan string, 1)
	b.Fire = func(triggerID, audioURI string) {
		done <- triggerID
	}

	b.StartImmediate("al-1", "default")

	select {
	case id := <-done:
		assert.Equal(t, "al-1-now", id)
	case <-time.After(time.Second):
		t.Fatal("immediate start did not fire")
	}
}

func TestStopActive(t *testing.T) {
	b := NewTimerBridge(allGranted(), slog.Default())

	stopped := false
	b.Stop = func() { stopped = true }
	b.StopActive()
	assert.True(t, stopped)

	// No panic without a stop hook.
	b.Stop = nil
	b.StopActive()
}
