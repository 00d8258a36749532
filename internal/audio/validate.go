package audio

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrRecordingTooShort = errors.New("recording is shorter than the minimum duration")
	ErrRecordingTooLong  = errors.New("recording is longer than the maximum duration")
)

const (
	MinRecordingDuration = 3 * time.Second
	MaxRecordingDuration = 180 * time.Second
)

// ValidateRecording checks a candidate recording before anything persists:
// the file must exist and be non-empty, and the duration must sit inside the
// allowed window.
func ValidateRecording(path string, duration time.Duration, min, max time.Duration) error {
	if min <= 0 {
		min = MinRecordingDuration
	}
	if max <= 0 {
		max = MaxRecordingDuration
	}

	if duration < min {
		return fmt.Errorf("%w: %s < %s", ErrRecordingTooShort, duration, min)
	}
	if duration > max {
		return fmt.Errorf("%w: %s > %s", ErrRecordingTooLong, duration, max)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("recording file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("recording file %s is empty", path)
	}
	return nil
}
