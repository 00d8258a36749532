package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reveille-app/reveille/internal/audio"
	"github.com/reveille-app/reveille/internal/model"
)

// NewRecording carries a validated candidate into AddRecording.
type NewRecording struct {
	Name     string
	Path     string
	Duration time.Duration
	FileSize int64
}

// AddRecording validates a candidate, makes room under the quota by evicting
// the oldest non-default recordings, and persists it. Evicted recordings
// take their dependent alarms and triggers with them.
func (e *Engine) AddRecording(ctx context.Context, nr NewRecording) (*model.Recording, error) {
	if err := audio.ValidateRecording(nr.Path, nr.Duration, e.minDur, e.maxDur); err != nil {
		return nil, err
	}

	if err := e.makeRoom(ctx, nr.FileSize); err != nil {
		return nil, err
	}

	now := e.now()
	rec := &model.Recording{
		ID:         uuid.NewString(),
		Name:       nr.Name,
		AudioURI:   nr.Path,
		Duration:   nr.Duration.Milliseconds(),
		FileSize:   nr.FileSize,
		UploadedAt: now.UnixMilli(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.Name == "" {
		rec.Name = "Recording " + now.Format("Jan 2 15:04")
	}

	if err := e.recordings.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return rec, nil
}

// makeRoom evicts oldest-first until the incoming recording fits both quota
// bounds.
func (e *Engine) makeRoom(ctx context.Context, incoming int64) error {
	for {
		stats, err := e.recordings.Stats(ctx)
		if err != nil {
			return err
		}
		if e.quota.Admits(*stats, incoming) {
			return nil
		}
		if stats.Count == 0 {
			// Nothing left to evict; the candidate alone exceeds the
			// storage bound.
			return fmt.Errorf("recording of %d bytes exceeds the storage quota", incoming)
		}

		oldest, err := e.recordings.Oldest(ctx)
		if err != nil {
			return err
		}
		e.log.Info("evicting recording for quota", "recording", oldest.ID, "name", oldest.Name)
		if err := e.DeleteRecording(ctx, oldest.ID); err != nil {
			return err
		}
	}
}

// DeleteRecording cancels the triggers of every dependent alarm, deletes
// the row (the schema cascade removes the alarms in the same statement),
// then removes the audio file from disk so deletion reclaims real storage.
// The sentinel default is refused by the repository.
func (e *Engine) DeleteRecording(ctx context.Context, id string) error {
	rec, err := e.recordings.ByID(ctx, id)
	if err != nil {
		return err
	}

	dependents, err := e.alarms.ByRecordingID(ctx, id)
	if err != nil {
		return err
	}

	for _, a := range dependents {
		e.cancelTriggers(a)
		e.CancelSnoozeTriggers(a.ID)
		e.stopIfRinging(a.ID)
		if err := e.prefs.ResetSnoozeCount(a.ID); err != nil {
			e.log.Error("reset snooze count", "alarm", a.ID, "error", err)
		}
		e.clearState(a.ID)
	}

	if err := e.recordings.Delete(ctx, id); err != nil {
		return err
	}
	e.removeAudioFile(rec.AudioURI)

	e.log.Info("recording deleted", "recording", id, "cascaded_alarms", len(dependents))
	return nil
}

// removeAudioFile best-effort deletes a recording's file once its row is
// gone. A missing file is fine; anything else is logged, not returned.
func (e *Engine) removeAudioFile(uri string) {
	if uri == "" || uri == model.DefaultRecordingID {
		return
	}
	path := strings.TrimPrefix(uri, "file://")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.log.Warn("remove recording file", "path", path, "error", err)
	}
}

// Recordings lists the library, sentinel first then newest first.
func (e *Engine) Recordings(ctx context.Context) ([]*model.Recording, error) {
	return e.recordings.All(ctx)
}

func (e *Engine) RenameRecording(ctx context.Context, id, name string) error {
	return e.recordings.Rename(ctx, id, name)
}

// RecordingStats returns the non-default count and aggregate size.
func (e *Engine) RecordingStats(ctx context.Context) (*model.RecordingStats, error) {
	return e.recordings.Stats(ctx)
}
