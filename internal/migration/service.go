// Package migration imports alarms and recordings from the legacy flat
// key-value store into the relational store, exactly once.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
	"github.com/reveille-app/reveille/internal/repository"
)

// Version stamps the migration status so a future format change can be
// distinguished from the initial import.
const Version = "1"

// Result summarizes one Migrate call.
type Result struct {
	AlreadyMigrated    bool
	MigratedRecordings int
	MigratedAlarms     int
}

type Service struct {
	prefs      *prefs.Store
	recordings repository.RecordingRepository
	alarms     repository.AlarmRepository
	log        *slog.Logger
}

func New(p *prefs.Store, recordings repository.RecordingRepository, alarms repository.AlarmRepository, log *slog.Logger) *Service {
	return &Service{prefs: p, recordings: recordings, alarms: alarms, log: log}
}

// legacyRecording mirrors the JSON shape the old store kept under
// @recordings and @recordings_list.
type legacyRecording struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AudioURI   string  `json:"audioUri"`
	URI        string  `json:"uri"`
	Duration   float64 `json:"duration"`
	FileSize   int64   `json:"fileSize"`
	UploadedAt int64   `json:"uploadedAt"`
}

// legacyAlarm mirrors the JSON shape the old store kept under @alarms.
type legacyAlarm struct {
	ID          string   `json:"id"`
	RecordingID *string  `json:"recordingId"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	AmPm        string   `json:"ampm"`
	Days        []string `json:"days"`
	Enabled     bool     `json:"enabled"`
	AudioURI    string   `json:"audioUri"`
}

// Migrate imports the legacy blobs. It is idempotent two ways: a completed
// status short-circuits the whole call, and every insert skips rows whose id
// already exists. On failure the status is marked failed so the next daemon
// start retries; rows inserted before the failure are kept.
func (s *Service) Migrate(ctx context.Context) (Result, error) {
	status, err := s.prefs.MigrationStatus()
	if err != nil {
		return Result{}, fmt.Errorf("read migration status: %w", err)
	}
	if status.Completed {
		return Result{
			AlreadyMigrated:    true,
			MigratedRecordings: status.MigratedRecordings,
			MigratedAlarms:     status.MigratedAlarms,
		}, nil
	}

	res, err := s.run(ctx)
	if err != nil {
		s.log.Error("legacy migration failed", "error", err)
		if serr := s.prefs.SetMigrationStatus(prefs.MigrationStatus{
			Failed:   true,
			FailedAt: prefs.Now(),
			Error:    err.Error(),
			Version:  Version,
		}); serr != nil {
			s.log.Error("record migration failure", "error", serr)
		}
		return Result{}, err
	}

	if err := s.prefs.SetMigrationStatus(prefs.MigrationStatus{
		Completed:          true,
		CompletedAt:        prefs.Now(),
		MigratedRecordings: res.MigratedRecordings,
		MigratedAlarms:     res.MigratedAlarms,
		Version:            Version,
	}); err != nil {
		return Result{}, fmt.Errorf("record migration status: %w", err)
	}

	s.log.Info("legacy migration complete",
		"recordings", res.MigratedRecordings,
		"alarms", res.MigratedAlarms,
	)
	return res, nil
}

func (s *Service) run(ctx context.Context) (Result, error) {
	var res Result

	recs, err := s.legacyRecordings()
	if err != nil {
		return res, err
	}
	for _, lr := range recs {
		n, err := s.importRecording(ctx, lr)
		if err != nil {
			return res, err
		}
		res.MigratedRecordings += n
	}

	alarms, err := s.legacyList(prefs.KeyLegacyAlarms)
	if err != nil {
		return res, err
	}
	for _, raw := range alarms {
		var la legacyAlarm
		if err := json.Unmarshal(raw, &la); err != nil {
			return res, fmt.Errorf("decode legacy alarm: %w", err)
		}
		n, err := s.importAlarm(ctx, la)
		if err != nil {
			return res, err
		}
		res.MigratedAlarms += n
	}

	return res, nil
}

// legacyRecordings merges the primary blob with the secondary list, deduping
// by id with the primary winning.
func (s *Service) legacyRecordings() ([]legacyRecording, error) {
	var out []legacyRecording
	seen := map[string]bool{}

	for _, key := range []string{prefs.KeyLegacyRecordings, prefs.KeyLegacyRecordingsList} {
		items, err := s.legacyList(key)
		if err != nil {
			return nil, err
		}
		for _, raw := range items {
			var lr legacyRecording
			if err := json.Unmarshal(raw, &lr); err != nil {
				return nil, fmt.Errorf("decode legacy recording in %s: %w", key, err)
			}
			if lr.ID == "" || seen[lr.ID] {
				continue
			}
			seen[lr.ID] = true
			out = append(out, lr)
		}
	}
	return out, nil
}

// legacyList reads a key holding a JSON array, treating a missing key as an
// empty list.
func (s *Service) legacyList(key string) ([]json.RawMessage, error) {
	raw, err := s.prefs.Get(key)
	if errors.Is(err, prefs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func (s *Service) importRecording(ctx context.Context, lr legacyRecording) (int, error) {
	if lr.ID == model.DefaultRecordingID {
		return 0, nil
	}

	uri := lr.AudioURI
	if uri == "" {
		uri = lr.URI
	}

	now := time.Now()
	uploadedAt := lr.UploadedAt
	if uploadedAt == 0 {
		uploadedAt = now.UnixMilli()
	}

	rec := &model.Recording{
		ID:         lr.ID,
		Name:       lr.Name,
		AudioURI:   uri,
		Duration:   int64(lr.Duration),
		FileSize:   lr.FileSize,
		UploadedAt: uploadedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.recordings.Create(ctx, rec)
	if errors.Is(err, repository.ErrDuplicateID) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("import recording %s: %w", lr.ID, err)
	}
	return 1, nil
}

func (s *Service) importAlarm(ctx context.Context, la legacyAlarm) (int, error) {
	days, err := model.NormalizeDays(la.Days)
	if err != nil {
		// Old builds wrote a handful of malformed day keys. Skip the row
		// rather than fail the whole import.
		s.log.Warn("skipping legacy alarm with bad days", "id", la.ID, "error", err)
		return 0, nil
	}

	// Alarms referencing a recording that never made it across would trip
	// the foreign key; detach them to the bundled default instead.
	recordingID := la.RecordingID
	if recordingID != nil {
		if _, err := s.recordings.ByID(ctx, *recordingID); errors.Is(err, repository.ErrRecordingNotFound) {
			recordingID = nil
		} else if err != nil {
			return 0, fmt.Errorf("check recording %s: %w", *recordingID, err)
		}
	}

	now := time.Now()
	alarm := &model.Alarm{
		ID:          la.ID,
		RecordingID: recordingID,
		Hour:        la.Hour,
		Minute:      la.Minute,
		AmPm:        la.AmPm,
		Days:        days,
		Enabled:     la.Enabled,
		AudioURI:    la.AudioURI,
		TriggerIDs:  model.StringList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := alarm.Validate(); err != nil {
		s.log.Warn("skipping invalid legacy alarm", "id", la.ID, "error", err)
		return 0, nil
	}

	err = s.alarms.Create(ctx, alarm)
	if errors.Is(err, repository.ErrDuplicateID) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("import alarm %s: %w", la.ID, err)
	}
	return 1, nil
}
