package model

import (
	"fmt"
	"time"
)

const (
	AmPmAM = "AM"
	AmPmPM = "PM"
)

type Alarm struct {
	ID          string     `db:"id" json:"id"`
	RecordingID *string    `db:"recording_id" json:"recordingId,omitempty"`
	Hour        int        `db:"hour" json:"hour"`     // 1-12
	Minute      int        `db:"minute" json:"minute"` // 0-59
	AmPm        string     `db:"ampm" json:"ampm"`
	Days        Days       `db:"days" json:"days"`
	Enabled     bool       `db:"enabled" json:"enabled"`
	AudioURI    string     `db:"audio_uri" json:"audioUri,omitempty"`
	TriggerIDs  StringList `db:"trigger_ids" json:"triggerIds"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// Hour24 converts the stored 12-hour clock to a 24-hour value.
func (a *Alarm) Hour24() int {
	h := a.Hour
	if a.AmPm == AmPmPM && h != 12 {
		h += 12
	} else if a.AmPm == AmPmAM && h == 12 {
		h = 0
	}
	return h
}

// TimeLabel renders the alarm time for notifications, e.g. "7:30 AM".
func (a *Alarm) TimeLabel() string {
	return fmt.Sprintf("%d:%02d %s", a.Hour, a.Minute, a.AmPm)
}

// TriggerID returns the scheduler id for one weekday of this alarm. At most
// one live trigger exists per (alarm, weekday).
func TriggerID(alarmID, day string) string {
	return alarmID + "-" + day
}

// Validate checks the clock fields and weekday keys.
func (a *Alarm) Validate() error {
	if a.Hour < 1 || a.Hour > 12 {
		return fmt.Errorf("hour %d out of range 1-12", a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("minute %d out of range 0-59", a.Minute)
	}
	if a.AmPm != AmPmAM && a.AmPm != AmPmPM {
		return fmt.Errorf("ampm must be AM or PM, got %q", a.AmPm)
	}
	for _, d := range a.Days {
		if _, ok := WeekdayOf(d); !ok {
			return fmt.Errorf("unknown weekday %q", d)
		}
	}
	return nil
}
