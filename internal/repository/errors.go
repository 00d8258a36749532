package repository

import (
	"errors"
	"strings"

	sqlite "modernc.org/sqlite"
)

var (
	ErrDuplicateID       = errors.New("id already exists")
	ErrRecordingNotFound = errors.New("recording not found")
	ErrAlarmNotFound     = errors.New("alarm not found")
	ErrDefaultImmutable  = errors.New("default recording cannot be modified or deleted")
)

const sqliteConstraint = 19

// duplicateErr maps a primary-key violation to ErrDuplicateID so callers can
// branch on it; other errors pass through untouched.
func duplicateErr(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqliteConstraint {
		return ErrDuplicateID
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateID
	}
	return err
}
