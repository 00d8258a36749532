package model

import (
	"time"
)

// DefaultRecordingID is the sentinel id of the bundled alarm sound. The row
// always exists, sorts first in listings, and cannot be renamed or deleted.
const DefaultRecordingID = "default"

// DefaultRecordingName is the display name of the sentinel recording.
const DefaultRecordingName = "Default Alarm Sound"

type Recording struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	AudioURI   string    `db:"audio_uri" json:"audioUri"`
	Duration   int64     `db:"duration" json:"duration"` // milliseconds
	FileSize   int64     `db:"file_size" json:"fileSize"`
	UploadedAt int64     `db:"uploaded_at" json:"uploadedAt"` // epoch milliseconds
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// IsDefault reports whether this is the sentinel bundled recording.
func (r *Recording) IsDefault() bool {
	return r.ID == DefaultRecordingID
}

// RecordingStats aggregates the persisted recordings.
type RecordingStats struct {
	Count      int   `db:"count" json:"count"`
	TotalBytes int64 `db:"total_bytes" json:"totalBytes"`
}
