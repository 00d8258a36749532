package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reveille-app/reveille/internal/db"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/retry"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	d, err := db.Init(":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(d.DB))
	t.Cleanup(func() { d.Close() })
	return d
}

func testRecording(id, name string, uploadedAt int64) *model.Recording {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Recording{
		ID:         id,
		Name:       name,
		AudioURI:   "/tmp/" + id + ".m4a",
		Duration:   12000,
		FileSize:   4096,
		UploadedAt: uploadedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func testAlarm(id string, recordingID *string) *model.Alarm {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Alarm{
		ID:          id,
		RecordingID: recordingID,
		Hour:        7,
		Minute:      30,
		AmPm:        model.AmPmAM,
		Days:        model.Days{"mon", "wed"},
		Enabled:     true,
		TriggerIDs:  model.StringList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRecordingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordingRepository(testDB(t), retry.Default())

	t.Run("seeded default exists", func(t *testing.T) {
		rec, err := repo.ByID(ctx, model.DefaultRecordingID)
		require.NoError(t, err)
		assert.True(t, rec.IsDefault())
	})

	t.Run("create and fetch", func(t *testing.T) {
		rec := testRecording("rec-1", "Morning voice", 100)
		require.NoError(t, repo.Create(ctx, rec))

		got, err := repo.ByID(ctx, "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "Morning voice", got.Name)
		assert.Equal(t, int64(12000), got.Duration)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := repo.Create(ctx, testRecording("rec-1", "again", 101))
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("default pinned first in listing", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testRecording("rec-2", "Newer", 200)))

		all, err := repo.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, model.DefaultRecordingID, all[0].ID)
		assert.Equal(t, "rec-2", all[1].ID)
		assert.Equal(t, "rec-1", all[2].ID)
	})

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, repo.Rename(ctx, "rec-1", "Renamed"))

		got, err := repo.ByID(ctx, "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("default is immutable", func(t *testing.T) {
		assert.ErrorIs(t, repo.Rename(ctx, model.DefaultRecordingID, "x"), ErrDefaultImmutable)
		assert.ErrorIs(t, repo.Delete(ctx, model.DefaultRecordingID), ErrDefaultImmutable)
	})

	t.Run("oldest excludes default", func(t *testing.T) {
		oldest, err := repo.Oldest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "rec-1", oldest.ID)
	})

	t.Run("stats exclude default", func(t *testing.T) {
		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Count)
		assert.Equal(t, int64(8192), stats.TotalBytes)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "rec-2"))
		_, err := repo.ByID(ctx, "rec-2")
		assert.ErrorIs(t, err, ErrRecordingNotFound)
	})

	t.Run("missing rows surface not found", func(t *testing.T) {
		_, err := repo.ByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrRecordingNotFound)
		assert.ErrorIs(t, repo.Rename(ctx, "nope", "x"), ErrRecordingNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrRecordingNotFound)
	})
}

func TestAlarmRepository(t *testing.T) {
	ctx := context.Background()
	database := testDB(t)
	recordings := NewRecordingRepository(database, retry.Default())
	alarms := NewAlarmRepository(database, retry.Default())

	require.NoError(t, recordings.Create(ctx, testRecording("rec-1", "Voice", 100)))
	recID := "rec-1"

	t.Run("create and fetch", func(t *testing.T) {
		require.NoError(t, alarms.Create(ctx, testAlarm("al-1", &recID)))

		got, err := alarms.ByID(ctx, "al-1")
		require.NoError(t, err)
		assert.Equal(t, model.Days{"mon", "wed"}, got.Days)
		require.NotNil(t, got.RecordingID)
		assert.Equal(t, "rec-1", *got.RecordingID)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		assert.ErrorIs(t, alarms.Create(ctx, testAlarm("al-1", nil)), ErrDuplicateID)
	})

	t.Run("list ordered by time of day", func(t *testing.T) {
		early := testAlarm("al-early", nil)
		early.Hour = 5
		require.NoError(t, alarms.Create(ctx, early))

		all, err := alarms.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "al-early", all[0].ID)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		a, err := alarms.ByID(ctx, "al-1")
		require.NoError(t, err)

		a.Minute = 45
		a.Days = model.Days{"fri"}
		require.NoError(t, alarms.Update(ctx, a))

		got, err := alarms.ByID(ctx, "al-1")
		require.NoError(t, err)
		assert.Equal(t, 45, got.Minute)
		assert.Equal(t, model.Days{"fri"}, got.Days)
	})

	t.Run("set enabled and trigger ids", func(t *testing.T) {
		require.NoError(t, alarms.SetEnabled(ctx, "al-1", false))
		require.NoError(t, alarms.SetTriggerIDs(ctx, "al-1", model.StringList{"al-1-fri"}))

		got, err := alarms.ByID(ctx, "al-1")
		require.NoError(t, err)
		assert.False(t, got.Enabled)
		assert.Equal(t, model.StringList{"al-1-fri"}, got.TriggerIDs)
	})

	t.Run("by recording id", func(t *testing.T) {
		dependents, err := alarms.ByRecordingID(ctx, "rec-1")
		require.NoError(t, err)
		require.Len(t, dependents, 1)
		assert.Equal(t, "al-1", dependents[0].ID)
	})

	t.Run("recording delete cascades", func(t *testing.T) {
		require.NoError(t, recordings.Delete(ctx, "rec-1"))

		_, err := alarms.ByID(ctx, "al-1")
		assert.ErrorIs(t, err, ErrAlarmNotFound)

		// The alarm without a recording survives.
		_, err = alarms.ByID(ctx, "al-early")
		assert.NoError(t, err)
	})

	t.Run("missing rows surface not found", func(t *testing.T) {
		_, err := alarms.ByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrAlarmNotFound)
		assert.ErrorIs(t, alarms.SetEnabled(ctx, "nope", true), ErrAlarmNotFound)
		assert.ErrorIs(t, alarms.Delete(ctx, "nope"), ErrAlarmNotFound)
	})
}
