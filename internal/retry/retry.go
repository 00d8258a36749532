// Package retry provides the single retry policy shared by all store writes.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	sqlite "modernc.org/sqlite"
)

const (
	DefaultAttempts = 3
	DefaultInterval = 100 * time.Millisecond
)

// Policy retries an operation a bounded number of times with exponential
// backoff. Only transient errors are retried; anything else surfaces
// immediately.
type Policy struct {
	Attempts uint64
	Interval time.Duration
}

func Default() Policy {
	return Policy{Attempts: DefaultAttempts, Interval: DefaultInterval}
}

// Do runs op, retrying transient failures up to Attempts times total.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx))
}

// sqlite primary result codes that indicate contention rather than failure.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// Transient reports whether an error is worth retrying: database contention
// or a dropped connection, not constraint violations or bad input.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "connection reset")
}
