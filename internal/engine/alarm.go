package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/repository"
)

// SaveResult reports the outcome of a save. Degraded means the alarm row
// persisted but at least one trigger could not be armed, typically because
// the exact-alarm permission is denied.
type SaveResult struct {
	Alarm    *model.Alarm
	Degraded bool
	Armed    []string
}

// SaveAlarm persists an alarm and arms one trigger per selected weekday.
// Saving over an existing id fully replaces its triggers before returning,
// so a re-save never leaks a stale trigger. Persistence failure aborts with
// no triggers armed; scheduling failure degrades but never fails the save.
func (e *Engine) SaveAlarm(ctx context.Context, a *model.Alarm) (*SaveResult, error) {
	days, err := model.NormalizeDays(a.Days)
	if err != nil {
		return nil, err
	}
	a.Days = days

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	a.UpdatedAt = now

	prior, err := e.alarms.ByID(ctx, a.ID)
	switch {
	case err == nil:
		e.cancelTriggers(prior)
		a.CreatedAt = prior.CreatedAt
		a.TriggerIDs = model.StringList{}
		if err := e.alarms.Update(ctx, a); err != nil {
			return nil, fmt.Errorf("update alarm: %w", err)
		}
	case errors.Is(err, repository.ErrAlarmNotFound):
		a.CreatedAt = now
		a.TriggerIDs = model.StringList{}
		if err := e.alarms.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("create alarm: %w", err)
		}
	default:
		return nil, fmt.Errorf("load alarm: %w", err)
	}

	res := &SaveResult{Alarm: a}
	if a.Enabled {
		armed, err := e.armTriggers(ctx, a)
		if err != nil {
			return nil, err
		}
		res.Armed = armed
		res.Degraded = len(armed) < len(a.Days)
	}

	e.setState(a.ID, stateFor(a.Enabled, len(res.Armed)))
	return res, nil
}

func stateFor(enabled bool, armed int) model.RingState {
	if enabled && armed > 0 {
		return model.StateScheduled
	}
	return model.StateIdle
}

// armTriggers schedules one trigger per weekday of the alarm and records the
// armed ids on the row.
func (e *Engine) armTriggers(ctx context.Context, a *model.Alarm) ([]string, error) {
	ref, err := e.audioRef(ctx, a)
	if err != nil {
		return nil, err
	}

	now := e.now()
	label := a.TimeLabel()
	armed := make([]string, 0, len(a.Days))
	for _, day := range a.Days {
		wd, ok := model.WeekdayOf(day)
		if !ok {
			continue
		}

		id := model.TriggerID(a.ID, day)
		fireAt := nextOccurrence(wd, a.Hour24(), a.Minute, now)
		if e.sched.Schedule(id, fireAt, ref, label) {
			armed = append(armed, id)
		}
	}

	if err := e.alarms.SetTriggerIDs(ctx, a.ID, model.StringList(armed)); err != nil {
		return nil, fmt.Errorf("record trigger ids: %w", err)
	}
	a.TriggerIDs = model.StringList(armed)
	return armed, nil
}

// audioRef picks the reference the scheduler should carry: the alarm's own
// URI when set, otherwise the attached recording's, otherwise the sentinel.
func (e *Engine) audioRef(ctx context.Context, a *model.Alarm) (string, error) {
	if a.AudioURI != "" {
		return a.AudioURI, nil
	}
	if a.RecordingID == nil || *a.RecordingID == model.DefaultRecordingID {
		return model.DefaultRecordingID, nil
	}

	rec, err := e.recordings.ByID(ctx, *a.RecordingID)
	if errors.Is(err, repository.ErrRecordingNotFound) {
		return model.DefaultRecordingID, nil
	}
	if err != nil {
		return "", fmt.Errorf("load recording: %w", err)
	}
	return rec.AudioURI, nil
}

// cancelTriggers cancels every trigger the row knows about plus the weekday
// ids derivable from its current day selection, covering rows whose
// trigger_ids column is stale.
func (e *Engine) cancelTriggers(a *model.Alarm) {
	seen := map[string]bool{}
	for _, id := range a.TriggerIDs {
		seen[id] = true
		e.sched.Cancel(id)
	}
	for _, day := range a.Days {
		id := model.TriggerID(a.ID, day)
		if !seen[id] {
			e.sched.Cancel(id)
		}
	}
}

// SetEnabled toggles an alarm, arming or cancelling its triggers.
func (e *Engine) SetEnabled(ctx context.Context, id string, enabled bool) (*SaveResult, error) {
	a, err := e.alarms.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Enabled == enabled {
		return &SaveResult{Alarm: a, Armed: a.TriggerIDs}, nil
	}

	if err := e.alarms.SetEnabled(ctx, id, enabled); err != nil {
		return nil, err
	}
	a.Enabled = enabled

	res := &SaveResult{Alarm: a}
	if enabled {
		armed, err := e.armTriggers(ctx, a)
		if err != nil {
			return nil, err
		}
		res.Armed = armed
		res.Degraded = len(armed) < len(a.Days)
	} else {
		e.cancelTriggers(a)
		e.CancelSnoozeTriggers(id)
		if err := e.alarms.SetTriggerIDs(ctx, id, model.StringList{}); err != nil {
			return nil, err
		}
		a.TriggerIDs = model.StringList{}
	}

	e.setState(id, stateFor(enabled, len(res.Armed)))
	return res, nil
}

// DeleteAlarm removes the row, its triggers, and its snooze count.
func (e *Engine) DeleteAlarm(ctx context.Context, id string) error {
	a, err := e.alarms.ByID(ctx, id)
	if err != nil {
		return err
	}

	e.cancelTriggers(a)
	e.CancelSnoozeTriggers(id)
	e.stopIfRinging(id)

	if err := e.prefs.ResetSnoozeCount(id); err != nil {
		e.log.Error("reset snooze count", "alarm", id, "error", err)
	}
	if err := e.alarms.Delete(ctx, id); err != nil {
		return err
	}

	e.clearState(id)
	return nil
}

// Alarms lists every alarm ordered by time of day.
func (e *Engine) Alarms(ctx context.Context) ([]*model.Alarm, error) {
	return e.alarms.All(ctx)
}

func (e *Engine) Alarm(ctx context.Context, id string) (*model.Alarm, error) {
	return e.alarms.ByID(ctx, id)
}

func (e *Engine) setState(id string, s model.RingState) {
	e.mu.Lock()
	e.states[id] = s
	e.mu.Unlock()
}

func (e *Engine) clearState(id string) {
	e.mu.Lock()
	delete(e.states, id)
	e.mu.Unlock()
}

// stopIfRinging halts playback when the given alarm is the one ringing.
func (e *Engine) stopIfRinging(alarmID string) {
	e.mu.Lock()
	if e.ringing != nil && e.ringing.alarmID == alarmID {
		e.ringing = nil
		e.player.Stop()
	}
	e.mu.Unlock()
}
