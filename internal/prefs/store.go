// Package prefs is the durable key-value store for small engine state:
// the legacy flat-store blobs consumed by migration, the migration status
// flag, and per-alarm snooze counts.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Legacy flat-store keys, read once by the migration service.
const (
	KeyLegacyAlarms         = "@alarms"
	KeyLegacyRecordings     = "@recordings"
	KeyLegacyRecordingsList = "@recordings_list"
)

const (
	keyMigrationStatus = "@migration_status"
	snoozeCountPrefix  = "snooze_count_"
)

var ErrNotFound = errors.New("prefs key not found")

// MigrationStatus is the persisted one-time migration flag.
type MigrationStatus struct {
	Completed          bool   `json:"completed"`
	Failed             bool   `json:"failed,omitempty"`
	CompletedAt        int64  `json:"completedAt,omitempty"`
	FailedAt           int64  `json:"failedAt,omitempty"`
	MigratedRecordings int    `json:"migratedRecordings,omitempty"`
	MigratedAlarms     int    `json:"migratedAlarms,omitempty"`
	Error              string `json:"error,omitempty"`
	Version            string `json:"version,omitempty"`
}

// Store wraps a badger database. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open creates or opens the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open prefs store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store for tests.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory prefs store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value for key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// GetJSON unmarshals the value at key into dst.
func (s *Store) GetJSON(key string, dst any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (s *Store) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}

// MigrationStatus returns the persisted flag, or a zero status when none has
// been written yet.
func (s *Store) MigrationStatus() (MigrationStatus, error) {
	var status MigrationStatus
	err := s.GetJSON(keyMigrationStatus, &status)
	if errors.Is(err, ErrNotFound) {
		return MigrationStatus{}, nil
	}
	return status, err
}

func (s *Store) SetMigrationStatus(status MigrationStatus) error {
	return s.SetJSON(keyMigrationStatus, status)
}

// SnoozeCount returns the persisted snooze count for a base alarm id,
// defaulting to 0. The count survives process restarts so the backoff
// sequence does not reset when the host is killed between snoozes.
func (s *Store) SnoozeCount(baseAlarmID string) (int, error) {
	raw, err := s.Get(snoozeCountPrefix + baseAlarmID)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt snooze count for %s: %w", baseAlarmID, err)
	}
	return n, nil
}

func (s *Store) SetSnoozeCount(baseAlarmID string, count int) error {
	return s.Set(snoozeCountPrefix+baseAlarmID, []byte(strconv.Itoa(count)))
}

func (s *Store) ResetSnoozeCount(baseAlarmID string) error {
	return s.Delete(snoozeCountPrefix + baseAlarmID)
}

// Now is separated for tests that stamp migration status timestamps.
var Now = func() int64 { return time.Now().UnixMilli() }
