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

type RecordingRepository interface {
	Create(ctx context.Context, r *model.Recording) error
	ByID(ctx context.Context, id string) (*model.Recording, error)
	All(ctx context.Context) ([]*model.Recording, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	Oldest(ctx context.Context) (*model.Recording, error)
	Stats(ctx context.Context) (*model.RecordingStats, error)
}

type recordingRepository struct {
	db     *sqlx.DB
	policy retry.Policy
}

func NewRecordingRepository(db *sqlx.DB, policy retry.Policy) RecordingRepository {
	return &recordingRepository{db: db, policy: policy}
}

func (r *recordingRepository) Create(ctx context.Context, rec *model.Recording) error {
	query := `INSERT INTO recordings (id, name, audio_uri, duration, file_size, uploaded_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return r.policy.Do(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query,
			rec.ID,
			rec.Name,
			rec.AudioURI,
			rec.Duration,
			rec.FileSize,
			rec.UploadedAt,
			rec.CreatedAt,
			rec.UpdatedAt,
		)
		return duplicateErr(err)
	})
}

func (r *recordingRepository) ByID(ctx context.Context, id string) (*model.Recording, error) {
	rec := &model.Recording{}
	query := `SELECT * FROM recordings WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordingNotFound
	}

	return rec, err
}

// All returns recordings newest first, with the sentinel default pinned to
// the top regardless of its timestamp.
func (r *recordingRepository) All(ctx context.Context) ([]*model.Recording, error) {
	var recs []*model.Recording
	query := `SELECT * FROM recordings
	          ORDER BY (id = $1) DESC, uploaded_at DESC`

	err := r.db.SelectContext(ctx, &recs, query, model.DefaultRecordingID)
	if err != nil {
		return nil, err
	}

	return recs, nil
}

func (r *recordingRepository) Rename(ctx context.Context, id, name string) error {
	if id == model.DefaultRecordingID {
		return ErrDefaultImmutable
	}

	query := `UPDATE recordings SET name = $1, updated_at = $2 WHERE id = $3`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, name, time.Now(), id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrRecordingNotFound
		}
		return nil
	})
}

// Delete removes a recording; the schema's ON DELETE CASCADE removes its
// dependent alarms in the same statement.
func (r *recordingRepository) Delete(ctx context.Context, id string) error {
	if id == model.DefaultRecordingID {
		return ErrDefaultImmutable
	}

	query := `DELETE FROM recordings WHERE id = $1`

	return r.policy.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrRecordingNotFound
		}
		return nil
	})
}

// Oldest returns the least recently uploaded non-default recording, the
// eviction candidate when the storage quota is exceeded.
func (r *recordingRepository) Oldest(ctx context.Context) (*model.Recording, error) {
	rec := &model.Recording{}
	query := `SELECT * FROM recordings WHERE id != $1
	          ORDER BY uploaded_at ASC, created_at ASC LIMIT 1`

	err := r.db.GetContext(ctx, rec, query, model.DefaultRecordingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordingNotFound
	}

	return rec, err
}

func (r *recordingRepository) Stats(ctx context.Context) (*model.RecordingStats, error) {
	stats := &model.RecordingStats{}
	query := `SELECT COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS total_bytes
	          FROM recordings WHERE id != $1`

	err := r.db.GetContext(ctx, stats, query, model.DefaultRecordingID)
	return stats, err
}
