package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDays(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{
			name: "empty defaults to all seven",
			in:   nil,
			want: []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"},
		},
		{
			name: "dedupes and orders canonically",
			in:   []string{"wed", "mon", "wed", "mon"},
			want: []string{"mon", "wed"},
		},
		{
			name: "single day",
			in:   []string{"fri"},
			want: []string{"fri"},
		},
		{
			name:    "unknown key rejected",
			in:      []string{"mon", "monday"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDays(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestWeekdayOf(t *testing.T) {
	wd, ok := WeekdayOf("tue")
	require.True(t, ok)
	assert.Equal(t, time.Tuesday, wd)

	_, ok = WeekdayOf("tuesday")
	assert.False(t, ok)
}

func TestTriggerID(t *testing.T) {
	assert.Equal(t, "abc-123-mon", TriggerID("abc-123", "mon"))
}

func TestAlarmHour24(t *testing.T) {
	tests := []struct {
		hour int
		ampm string
		want int
	}{
		{7, AmPmAM, 7},
		{7, AmPmPM, 19},
		{12, AmPmAM, 0},
		{12, AmPmPM, 12},
	}

	for _, tt := range tests {
		a := Alarm{Hour: tt.hour, AmPm: tt.ampm}
		assert.Equal(t, tt.want, a.Hour24(), "%d %s", tt.hour, tt.ampm)
	}
}

func TestAlarmValidate(t *testing.T) {
	valid := Alarm{Hour: 7, Minute: 30, AmPm: AmPmAM, Days: Days{"mon"}}
	require.NoError(t, valid.Validate())

	bad := []Alarm{
		{Hour: 0, Minute: 0, AmPm: AmPmAM},
		{Hour: 13, Minute: 0, AmPm: AmPmAM},
		{Hour: 7, Minute: 60, AmPm: AmPmAM},
		{Hour: 7, Minute: 0, AmPm: "am"},
		{Hour: 7, Minute: 0, AmPm: AmPmAM, Days: Days{"funday"}},
	}
	for i, a := range bad {
		assert.Error(t, a.Validate(), "case %d", i)
	}
}

func TestAlarmTimeLabel(t *testing.T) {
	a := Alarm{Hour: 7, Minute: 5, AmPm: AmPmAM}
	assert.Equal(t, "7:05 AM", a.TimeLabel())
}
