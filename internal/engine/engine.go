// Package engine owns the alarm lifecycle: persisting alarms, arming and
// re-arming triggers, the single ringing session, and the snooze sequence.
// Everything that must survive a process death lives in the stores, never
// only in memory.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reveille-app/reveille/internal/audio"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
	"github.com/reveille-app/reveille/internal/repository"
	"github.com/reveille-app/reveille/internal/scheduler"
)

// session is the one active ringing playback. At most one exists.
type session struct {
	alarmID   string
	triggerID string
	source    audio.Source
}

type Engine struct {
	alarms     repository.AlarmRepository
	recordings repository.RecordingRepository
	prefs      *prefs.Store
	pipeline   *audio.Pipeline
	player     audio.Player
	sched      scheduler.Bridge
	quota      audio.Quota
	minDur     time.Duration
	maxDur     time.Duration
	log        *slog.Logger
	now        func() time.Time

	// mu guards ringing and states, and serializes player start/stop so
	// playback always follows the session that owns it.
	mu      sync.Mutex
	ringing *session
	states  map[string]model.RingState
}

type Options struct {
	Quota                audio.Quota
	MinRecordingDuration time.Duration
	MaxRecordingDuration time.Duration
	Now                  func() time.Time
}

func New(
	alarms repository.AlarmRepository,
	recordings repository.RecordingRepository,
	p *prefs.Store,
	pipeline *audio.Pipeline,
	player audio.Player,
	sched scheduler.Bridge,
	log *slog.Logger,
	opts Options,
) *Engine {
	if opts.Quota == (audio.Quota{}) {
		opts.Quota = audio.DefaultQuota()
	}
	if opts.MinRecordingDuration <= 0 {
		opts.MinRecordingDuration = audio.MinRecordingDuration
	}
	if opts.MaxRecordingDuration <= 0 {
		opts.MaxRecordingDuration = audio.MaxRecordingDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		alarms:     alarms,
		recordings: recordings,
		prefs:      p,
		pipeline:   pipeline,
		player:     player,
		sched:      sched,
		quota:      opts.Quota,
		minDur:     opts.MinRecordingDuration,
		maxDur:     opts.MaxRecordingDuration,
		log:        log,
		now:        opts.Now,
		states:     map[string]model.RingState{},
	}
}

// State returns the lifecycle state of one alarm.
func (e *Engine) State(alarmID string) model.RingState {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.states[alarmID]
	if !ok {
		return model.StateIdle
	}
	return s
}

// Ringing returns the id of the currently ringing alarm, if any.
func (e *Engine) Ringing() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ringing == nil {
		return "", false
	}
	return e.ringing.alarmID, true
}

func (e *Engine) Permissions() model.PermissionStatus {
	return e.sched.Permissions()
}

// ArmedTriggers lists the ids of every live trigger.
func (e *Engine) ArmedTriggers() []string {
	return e.sched.Armed()
}

// Restore re-arms triggers for every enabled alarm. Called once at daemon
// start so alarms survive a process death.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	alarms, err := e.alarms.All(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		if _, err := e.armTriggers(ctx, a); err != nil {
			e.log.Error("restore alarm", "alarm", a.ID, "error", err)
			continue
		}
		restored++
	}

	e.log.Info("alarm triggers restored", "alarms", restored)
	return restored, nil
}

// Shutdown cancels every live trigger and stops any ringing audio. Alarm
// rows remain, so the next start restores them.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.ringing = nil
	e.player.Stop()
	e.mu.Unlock()

	e.sched.CancelAll()
}
