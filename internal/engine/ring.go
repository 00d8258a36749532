package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/repository"
)

// HandleFire is the scheduler's fire callback. It resolves the audio source,
// takes over the single ringing session (a second fire replaces the current
// one, never overlapping playback), starts looping audio, and immediately
// re-arms the same weekday slot one week out so the chain never breaks.
func (e *Engine) HandleFire(triggerID, audioRef string) {
	alarmID := baseAlarmID(triggerID)
	src := e.pipeline.Resolve(audioRef)

	e.mu.Lock()
	if e.ringing != nil {
		e.states[e.ringing.alarmID] = model.StateStopped
	}
	e.ringing = &session{alarmID: alarmID, triggerID: triggerID, source: src}
	e.states[alarmID] = model.StateRinging
	err := e.player.Start(src.Path)
	e.mu.Unlock()

	if err != nil {
		e.log.Error("start playback", "trigger", triggerID, "error", err)
	}
	e.log.Info("alarm ringing", "alarm", alarmID, "trigger", triggerID, "degraded", src.Degraded)

	if day, ok := triggerDay(triggerID); ok {
		e.rearm(triggerID, alarmID, day, audioRef)
	}
}

// rearm schedules the fired weekday trigger for next week. The row may have
// been deleted or disabled between arming and firing; both end the chain.
func (e *Engine) rearm(triggerID, alarmID, day, audioRef string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := e.alarms.ByID(ctx, alarmID)
	if errors.Is(err, repository.ErrAlarmNotFound) {
		return
	}
	if err != nil {
		e.log.Error("rearm lookup", "alarm", alarmID, "error", err)
		return
	}
	if !a.Enabled {
		return
	}

	wd, ok := model.WeekdayOf(day)
	if !ok {
		return
	}

	fireAt := nextOccurrence(wd, a.Hour24(), a.Minute, e.now())
	if !e.sched.Schedule(triggerID, fireAt, audioRef, a.TimeLabel()) {
		e.log.Warn("rearm denied", "trigger", triggerID)
	}
}

// Stop halts the ringing alarm and resets its snooze sequence. Stopping an
// alarm that is not ringing is a no-op; the bool reports whether a
// transition happened.
func (e *Engine) Stop(alarmID string) bool {
	e.mu.Lock()
	active := e.ringing != nil && e.ringing.alarmID == alarmID
	if active {
		e.ringing = nil
		e.states[alarmID] = model.StateStopped
		e.player.Stop()
	}
	e.mu.Unlock()

	if !active {
		return false
	}

	if err := e.prefs.ResetSnoozeCount(alarmID); err != nil {
		e.log.Error("reset snooze count", "alarm", alarmID, "error", err)
	}

	e.log.Info("alarm stopped", "alarm", alarmID)
	return true
}

// StopActive stops whatever alarm is ringing, if any.
func (e *Engine) StopActive() bool {
	e.mu.Lock()
	var id string
	if e.ringing != nil {
		id = e.ringing.alarmID
	}
	e.mu.Unlock()

	if id == "" {
		return false
	}
	return e.Stop(id)
}

// SnoozeResult reports a snooze transition.
type SnoozeResult struct {
	Handled   bool
	Offset    time.Duration
	TriggerID string
	FireAt    time.Time
}

// Snooze silences the ringing alarm and arms a one-shot trigger after the
// next offset in the backoff sequence. The count is persisted before the
// trigger is armed so a crash between the two cannot rewind the sequence.
// Snoozing a non-ringing alarm is a no-op.
func (e *Engine) Snooze(alarmID string) (SnoozeResult, error) {
	e.mu.Lock()
	active := e.ringing != nil && e.ringing.alarmID == alarmID
	var audioRef string
	if active {
		audioRef = e.ringing.source.Path
		e.ringing = nil
		e.states[alarmID] = model.StateSnoozed
		e.player.Stop()
	}
	e.mu.Unlock()

	if !active {
		return SnoozeResult{}, nil
	}

	count, err := e.prefs.SnoozeCount(alarmID)
	if err != nil {
		return SnoozeResult{}, err
	}
	offset := snoozeOffset(count)
	if err := e.prefs.SetSnoozeCount(alarmID, count+1); err != nil {
		return SnoozeResult{}, err
	}

	triggerID := snoozeTriggerID(alarmID, count+1)
	fireAt := e.now().Add(offset)
	if !e.sched.Schedule(triggerID, fireAt, audioRef, "Snoozed alarm") {
		e.log.Warn("snooze trigger denied", "trigger", triggerID)
	}

	e.setState(alarmID, model.StateScheduled)
	e.log.Info("alarm snoozed", "alarm", alarmID, "offset", offset, "trigger", triggerID)
	return SnoozeResult{Handled: true, Offset: offset, TriggerID: triggerID, FireAt: fireAt}, nil
}

// CancelSnoozeTriggers clears any armed one-shot snooze triggers for an
// alarm, leaving its weekly triggers alone.
func (e *Engine) CancelSnoozeTriggers(alarmID string) {
	prefix := alarmID + "-snooze-"
	for _, id := range e.sched.Armed() {
		if strings.HasPrefix(id, prefix) {
			e.sched.Cancel(id)
		}
	}
}

// Preview plays an alarm's sound immediately through the normal fire path.
func (e *Engine) Preview(ctx context.Context, alarmID string) error {
	a, err := e.alarms.ByID(ctx, alarmID)
	if err != nil {
		return err
	}

	ref, err := e.audioRef(ctx, a)
	if err != nil {
		return err
	}

	e.sched.StartImmediate(a.ID, ref)
	return nil
}
