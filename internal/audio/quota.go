package audio

import "github.com/reveille-app/reveille/internal/model"

const (
	DefaultMaxRecordings = 20
	DefaultMaxBytes      = 100 << 20
)

// Quota bounds the recording library. The sentinel default recording is
// exempt and never counted.
type Quota struct {
	MaxRecordings int
	MaxBytes      int64
}

func DefaultQuota() Quota {
	return Quota{MaxRecordings: DefaultMaxRecordings, MaxBytes: DefaultMaxBytes}
}

// Exceeded reports whether stats break either bound.
func (q Quota) Exceeded(stats model.RecordingStats) bool {
	return stats.Count > q.MaxRecordings || stats.TotalBytes > q.MaxBytes
}

// Admits reports whether adding a recording of size bytes to the current
// stats stays within both bounds.
func (q Quota) Admits(stats model.RecordingStats, bytes int64) bool {
	return !q.Exceeded(model.RecordingStats{
		Count:      stats.Count + 1,
		TotalBytes: stats.TotalBytes + bytes,
	})
}
