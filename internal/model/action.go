package model

// ActionType identifies an externally delivered alarm action, matching the
// identifiers carried on the notification surface.
type ActionType string

const (
	ActionStop    ActionType = "STOP"
	ActionSnooze  ActionType = "SNOOZE"
	ActionDefault ActionType = "DEFAULT" // open/tap, no transition
)

// Action is one delivered stop/snooze/open event. It may arrive long after
// the process that armed the alarm has exited, so it carries everything needed
// to act without in-memory state.
type Action struct {
	Type       ActionType `json:"type"`
	AlarmID    string     `json:"alarmId"`
	AudioURI   string     `json:"audioUri,omitempty"`
	Background bool       `json:"isBackgroundAlarm,omitempty"`
}

// RingState is the lifecycle state of a single alarm.
type RingState int

const (
	StateIdle RingState = iota
	StateScheduled
	StateRinging
	StateStopped
	StateSnoozed
)

func (s RingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRinging:
		return "ringing"
	case StateStopped:
		return "stopped"
	case StateSnoozed:
		return "snoozed"
	default:
		return "unknown"
	}
}

// PermissionStatus reports the platform capabilities that affect alarm
// reliability. Denials degrade scheduling, they never block a save.
type PermissionStatus struct {
	ExactAlarm           bool `json:"exactAlarm"`
	BatteryUnrestricted  bool `json:"batteryUnrestricted"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

func (p PermissionStatus) AllGranted() bool {
	return p.ExactAlarm && p.BatteryUnrestricted && p.NotificationsEnabled
}
