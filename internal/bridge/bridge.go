// Package bridge receives externally delivered alarm actions and routes
// them into the engine. Actions may be delivered more than once, long after
// the process that armed the alarm exited, or against an alarm that is no
// longer ringing; none of those cases may error.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reveille-app/reveille/internal/engine"
	"github.com/reveille-app/reveille/internal/model"
)

type ActionBridge struct {
	engine *engine.Engine
	runner *Runner
	log    *slog.Logger
}

func New(e *engine.Engine, runner *Runner, log *slog.Logger) *ActionBridge {
	return &ActionBridge{engine: e, runner: runner, log: log}
}

// HandleAction applies one delivered action. The state transition happens
// inline; trigger bookkeeping is handed to the background runner so the
// caller returns within its delivery budget. Duplicate or stale deliveries
// return handled=false with no error.
func (b *ActionBridge) HandleAction(a model.Action) (bool, error) {
	if a.AlarmID == "" && a.Type != model.ActionDefault {
		return false, fmt.Errorf("action %s missing alarm id", a.Type)
	}

	switch a.Type {
	case model.ActionStop:
		handled := b.engine.Stop(a.AlarmID)
		if handled {
			alarmID := a.AlarmID
			b.runner.Go("clear-snooze-triggers", func(ctx context.Context) error {
				b.engine.CancelSnoozeTriggers(alarmID)
				return nil
			})
		} else {
			b.log.Debug("stop action against quiescent alarm", "alarm", a.AlarmID)
		}
		return handled, nil

	case model.ActionSnooze:
		res, err := b.engine.Snooze(a.AlarmID)
		if err != nil {
			return false, err
		}
		if !res.Handled {
			b.log.Debug("snooze action against quiescent alarm", "alarm", a.AlarmID)
		}
		return res.Handled, nil

	case model.ActionDefault:
		// Open/tap: no lifecycle transition, the alarm keeps ringing.
		b.log.Info("default action received", "alarm", a.AlarmID, "background", a.Background)
		return false, nil

	default:
		return false, fmt.Errorf("unknown action type %q", a.Type)
	}
}
