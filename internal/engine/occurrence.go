package engine

import (
	"regexp"
	"strconv"
	"time"
)

// snoozeOffsets is the backoff sequence applied to consecutive snoozes of
// the same alarm, in minutes. The persisted snooze count indexes it, clamped
// to the last entry.
var snoozeOffsets = []int{5, 5, 5, 10, 3, 3, 3, 4, 4, 4, 2, 3, 4, 5, 6}

func snoozeOffset(count int) time.Duration {
	if count >= len(snoozeOffsets) {
		count = len(snoozeOffsets) - 1
	}
	if count < 0 {
		count = 0
	}
	return time.Duration(snoozeOffsets[count]) * time.Minute
}

// nextOccurrence finds the next wall-clock instant strictly after now that
// falls on the given weekday at hour24:minute. Built with time.Date so the
// location handles DST transitions and month boundaries.
func nextOccurrence(wd time.Weekday, hour24, minute int, now time.Time) time.Time {
	daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
	t := time.Date(now.Year(), now.Month(), now.Day()+daysAhead, hour24, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+daysAhead+7, hour24, minute, 0, 0, now.Location())
	}
	return t
}

var (
	snoozeSuffix = regexp.MustCompile(`-snooze-\d+$`)
	daySuffix    = regexp.MustCompile(`-(sun|mon|tue|wed|thu|fri|sat|now)$`)
)

// baseAlarmID strips the weekday, snooze, or immediate-start suffix from a
// trigger id. Alarm ids contain dashes themselves, so only known suffixes
// are removed.
func baseAlarmID(triggerID string) string {
	if loc := snoozeSuffix.FindStringIndex(triggerID); loc != nil {
		return triggerID[:loc[0]]
	}
	if loc := daySuffix.FindStringIndex(triggerID); loc != nil {
		return triggerID[:loc[0]]
	}
	return triggerID
}

// triggerDay extracts the weekday key from a weekday trigger id, if present.
func triggerDay(triggerID string) (string, bool) {
	if snoozeSuffix.MatchString(triggerID) {
		return "", false
	}
	m := daySuffix.FindStringSubmatch(triggerID)
	if m == nil || m[1] == "now" {
		return "", false
	}
	return m[1], true
}

// isSnoozeTrigger reports whether the id was armed by a snooze.
func isSnoozeTrigger(triggerID string) bool {
	return snoozeSuffix.MatchString(triggerID)
}

// snoozeTriggerID builds the one-shot trigger id for the nth snooze of an
// alarm.
func snoozeTriggerID(alarmID string, n int) string {
	return alarmID + "-snooze-" + strconv.Itoa(n)
}
