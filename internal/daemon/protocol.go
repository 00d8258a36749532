// Package daemon exposes the engine over a Unix socket. Each connection
// carries newline-delimited JSON: one Command per line in, one Response per
// line out.
package daemon

import (
	"encoding/json"
	"time"

	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
)

// Operation names accepted on the wire.
const (
	OpAlarmSave     = "alarm.save"
	OpAlarmList     = "alarm.list"
	OpAlarmGet      = "alarm.get"
	OpAlarmToggle   = "alarm.toggle"
	OpAlarmDelete   = "alarm.delete"
	OpAlarmPreview  = "alarm.preview"
	OpAlarmState    = "alarm.state"
	OpRecAdd        = "rec.add"
	OpRecList       = "rec.list"
	OpRecDelete     = "rec.delete"
	OpRecRename     = "rec.rename"
	OpAction        = "action"
	OpStats         = "stats"
	OpPermissions   = "permissions"
	OpMigrateStatus = "migrate.status"
	OpPing          = "ping"
)

// Command is one request line. Data holds the op-specific payload.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is one reply line. Data holds the op-specific payload when OK.
type Response struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SaveAlarmRequest carries the writable alarm fields. An empty ID creates a
// new alarm.
type SaveAlarmRequest struct {
	ID          string   `json:"id,omitempty"`
	RecordingID *string  `json:"recordingId,omitempty"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	AmPm        string   `json:"ampm"`
	Days        []string `json:"days"`
	Enabled     bool     `json:"enabled"`
	AudioURI    string   `json:"audioUri,omitempty"`
}

type SaveAlarmResponse struct {
	Alarm    *model.Alarm `json:"alarm"`
	Degraded bool         `json:"degraded"`
	Armed    []string     `json:"armed"`
}

type AlarmIDRequest struct {
	ID string `json:"id"`
}

type ToggleRequest struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

type StateResponse struct {
	State string `json:"state"`
}

type AddRecordingRequest struct {
	Name     string `json:"name,omitempty"`
	Path     string `json:"path"`
	Duration int64  `json:"duration"` // milliseconds
	FileSize int64  `json:"fileSize"`
}

type RenameRecordingRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ActionResponse struct {
	Handled bool `json:"handled"`
}

type StatsResponse struct {
	Recordings model.RecordingStats `json:"recordings"`
	Armed      []string             `json:"armed"`
	Ringing    string               `json:"ringing,omitempty"`
}

type MigrateStatusResponse struct {
	Status prefs.MigrationStatus `json:"status"`
}

// DurationMS converts a protocol millisecond field.
func DurationMS(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
