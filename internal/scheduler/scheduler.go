// Package scheduler is the boundary between the engine and the exact-timer
// facility. Triggers armed here outlive any connected client; only daemon
// shutdown or an explicit cancel clears them.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/reveille-app/reveille/internal/model"
)

// FireFunc is invoked on its own goroutine when a trigger fires or an
// immediate start is requested.
type FireFunc func(triggerID, audioURI string)

// StopFunc is invoked by StopActive to halt whatever is ringing.
type StopFunc func()

// Bridge is the scheduling surface the engine depends on.
//
// Schedule returns false instead of an error when the exact-alarm permission
// is denied; the caller persists the alarm anyway and reports degradation.
// Cancel of an unknown trigger is a no-op.
type Bridge interface {
	Schedule(triggerID string, fireAt time.Time, audioURI, label string) bool
	Cancel(triggerID string)
	CancelAll()
	Armed() []string
	StartImmediate(alarmID, audioURI string)
	StopActive()
	Permissions() model.PermissionStatus
}

// TimerBridge implements Bridge on process-local timers.
type TimerBridge struct {
	perms model.PermissionStatus
	log   *slog.Logger
	now   func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	audio  map[string]string

	// Set by the engine before any trigger can fire.
	Fire FireFunc
	Stop StopFunc
}

func NewTimerBridge(perms model.PermissionStatus, log *slog.Logger) *TimerBridge {
	return &TimerBridge{
		perms:  perms,
		log:    log,
		now:    time.Now,
		timers: map[string]*time.Timer{},
		audio:  map[string]string{},
	}
}

// Schedule arms triggerID for fireAt. Re-using an id replaces the existing
// trigger atomically. fireAt must be strictly in the future.
func (b *TimerBridge) Schedule(triggerID string, fireAt time.Time, audioURI, label string) bool {
	if !b.perms.ExactAlarm {
		b.log.Warn("exact alarm permission denied, trigger not armed", "trigger", triggerID)
		return false
	}

	delay := fireAt.Sub(b.now())
	if delay <= 0 {
		b.log.Warn("refusing non-future trigger", "trigger", triggerID, "fire_at", fireAt)
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.timers[triggerID]; ok {
		old.Stop()
	}
	b.audio[triggerID] = audioURI
	b.timers[triggerID] = time.AfterFunc(delay, func() {
		b.fired(triggerID)
	})

	b.log.Info("trigger armed", "trigger", triggerID, "fire_at", fireAt, "label", label)
	return true
}

func (b *TimerBridge) fired(triggerID string) {
	b.mu.Lock()
	audioURI, ok := b.audio[triggerID]
	delete(b.timers, triggerID)
	delete(b.audio, triggerID)
	fire := b.Fire
	b.mu.Unlock()

	if !ok || fire == nil {
		return
	}
	fire(triggerID, audioURI)
}

func (b *TimerBridge) Cancel(triggerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[triggerID]; ok {
		t.Stop()
		delete(b.timers, triggerID)
		delete(b.audio, triggerID)
	}
}

func (b *TimerBridge) CancelAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
		delete(b.audio, id)
	}
}

// Armed returns the ids of live triggers, unordered.
func (b *TimerBridge) Armed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.timers))
	for id := range b.timers {
		out = append(out, id)
	}
	return out
}

// StartImmediate fires the alarm path now, bypassing the timer map. Used by
// preview.
func (b *TimerBridge) StartImmediate(alarmID, audioURI string) {
	b.mu.Lock()
	fire := b.Fire
	b.mu.Unlock()

	if fire == nil {
		return
	}
	go fire(alarmID+"-now", audioURI)
}

func (b *TimerBridge) StopActive() {
	b.mu.Lock()
	stop := b.Stop
	b.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (b *TimerBridge) Permissions() model.PermissionStatus {
	return b.perms
}
