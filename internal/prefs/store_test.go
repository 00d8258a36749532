package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	s := testStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", []byte("v")))
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONRoundTrip(t *testing.T) {
	s := testStore(t)

	type blob struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	require.NoError(t, s.SetJSON("b", blob{Name: "x", N: 3}))

	var got blob
	require.NoError(t, s.GetJSON("b", &got))
	assert.Equal(t, blob{Name: "x", N: 3}, got)
}

func TestMigrationStatus(t *testing.T) {
	s := testStore(t)

	status, err := s.MigrationStatus()
	require.NoError(t, err)
	assert.False(t, status.Completed)

	require.NoError(t, s.SetMigrationStatus(MigrationStatus{
		Completed:          true,
		CompletedAt:        1234,
		MigratedRecordings: 2,
		MigratedAlarms:     3,
		Version:            "1",
	}))

	status, err = s.MigrationStatus()
	require.NoError(t, err)
	assert.True(t, status.Completed)
	assert.Equal(t, 2, status.MigratedRecordings)
	assert.Equal(t, 3, status.MigratedAlarms)
}

func TestSnoozeCounts(t *testing.T) {
	s := testStore(t)

	n, err := s.SnoozeCount("al-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.SetSnoozeCount("al-1", 4))
	n, err = s.SnoozeCount("al-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Counts are per alarm.
	n, err = s.SnoozeCount("al-2")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.ResetSnoozeCount("al-1"))
	n, err = s.SnoozeCount("al-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	// Resetting an absent count is fine.
	assert.NoError(t, s.ResetSnoozeCount("al-3"))
}
