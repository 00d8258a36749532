package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/retry"
)

type AlarmRepository interface {
	Create(ctx context.Context, a *model.Alarm) error
	ByID(ctx context.Context, id string) (*model.Alarm, error)
	All(ctx context.Context) ([]*model.Alarm, error)
	ByRecordingID(ctx context.Context, recordingID string) ([]*model.Alarm, error)
	Update(ctx context.Context, a *model.Alarm) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	SetTriggerIDs(ctx context.Context, id string, triggerIDs model.StringList) error
	Delete(ctx context.Context, id string) error
}

type alarmRepository struct {
	db     *sqlx.DB
	policy retry.Policy
}

func NewAlarmRepository(db *sqlx.DB, policy retry.Policy) AlarmRepository {
	return &alarmRepository{db: db, policy: policy}
}

func (r *alarmRepository) Create(ctx context.Context, a *model.Alarm) error {
	query := `INSERT INTO alarms (id, recording_id, hour, minute, ampm, days, enabled, audio_uri, trigger_ids, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	return r.policy.Do(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query,
			a.ID,
			a.RecordingID,
			a.Hour,
			a.Minute,
			a.AmPm,
			a.Days,
			a.Enabled,
			a.AudioURI,
			a.TriggerIDs,
			a.CreatedAt,
			a.UpdatedAt,
		)
		return duplicateErr(err)
	})
}

func (r *alarmRepository) ByID(ctx context.Context, id string) (*model.Alarm, error) {
	alarm := &model.Alarm{}
	query := `SELECT * FROM alarms WHERE id = $1`

	err := r.db.GetContext(ctx, alarm, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlarmNotFound
	}

	return alarm, err
}

func (r *alarmRepository) All(ctx context.Context) ([]*model.Alarm, error) {
	var alarms []*model.Alarm
	query := `SELECT * FROM alarms ORDER BY hour, minute`

	err := r.db.SelectContext(ctx, &alarms, query)
	if err != nil {
		return nil, err
	}

	return alarms, nil
}

func (r *alarmRepository) ByRecordingID(ctx context.Context, recordingID string) ([]*model.Alarm, error) {
	var alarms []*model.Alarm
	query := `SELECT * FROM alarms WHERE recording_id = $1`

	err := r.db.SelectContext(ctx, &alarms, query, recordingID)
	if err != nil {
		return nil, err
	}

	return alarms, nil
}

func (r *alarmRepository) Update(ctx context.Context, a *model.Alarm) error {
	query := `UPDATE alarms
	          SET recording_id = $1, hour = $2, minute = $3, ampm = $4, days = $5,
	              enabled = $6, audio_uri = $7, trigger_ids = $8, updated_at = $9
	          WHERE id = $10`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query,
			a.RecordingID,
			a.Hour,
			a.Minute,
			a.AmPm,
			a.Days,
			a.Enabled,
			a.AudioURI,
			a.TriggerIDs,
			time.Now(),
			a.ID,
		)
		if err != nil {
			return err
		}
		return rowsAffectedErr(result)
	})
}

func (r *alarmRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE alarms SET enabled = $1, updated_at = $2 WHERE id = $3`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, enabled, time.Now(), id)
		if err != nil {
			return err
		}
		return rowsAffectedErr(result)
	})
}

func (r *alarmRepository) SetTriggerIDs(ctx context.Context, id string, triggerIDs model.StringList) error {
	query := `UPDATE alarms SET trigger_ids = $1, updated_at = $2 WHERE id = $3`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, triggerIDs, time.Now(), id)
		if err != nil {
			return err
		}
		return rowsAffectedErr(result)
	})
}

func (r *alarmRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM alarms WHERE id = $1`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		return rowsAffectedErr(result)
	})
}

func rowsAffectedErr(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlarmNotFound
	}
	return nil
}
