package etl

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	got, err := ValidateDate("2018-11-03T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2018-11-03T10:00:00", got)

	_, err = ValidateDate("2018-11-03")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTask))
	var te *TaskError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, RunDateLayout, te.Details["layout"])
}

func TestRuntimeDateAndTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2020, 1, 1, 2, 30, 0, 0, loc)
	assert.Equal(t, "2019-12-31", RuntimeDate(now))
	assert.Equal(t, "2019-12-31 21:30:00", Timestamp(now))
}

func TestHourlySeries(t *testing.T) {
	series, err := HourlySeries("2018-11-03")
	require.NoError(t, err)
	require.Len(t, series, 24)
	assert.Equal(t, "2018-11-03-00", series[0])
	assert.Equal(t, "2018-11-03-23", series[23])

	_, err = HourlySeries("03/11/2018")
	assert.Error(t, err)
}

func TestSecondsToString(t *testing.T) {
	assert.Equal(t, "1 days, 2 hours, 3 minutes, 4 seconds", SecondsToString(93784))
	assert.Equal(t, "0 days, 0 hours, 0 minutes, 59 seconds", SecondsToString(59.9))
}

func TestConvertTimezone(t *testing.T) {
	got, err := ConvertTimezone("Sat, 03 Nov 2018 10:00:00 +0000", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, 6, got.Hour())
	assert.Equal(t, "America/New_York", got.Location().String())

	_, err = ConvertTimezone("2018-11-03T10:00:00Z", "Mars/Olympus")
	assert.Error(t, err)
}

func TestReplaceTimezone(t *testing.T) {
	got, err := ReplaceTimezone("2018-11-03 10:00:00", "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, "Europe/Berlin", got.Location().String())
}

func TestTaskErrorMessage(t *testing.T) {
	err := NewTaskError("load failed", map[string]any{"table": "orders", "attempt": 3})
	assert.Equal(t, "load failed (attempt=3, table=orders)", err.Error())
	assert.Equal(t, "bare", NewTaskError("bare", nil).Error())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2018, time.November, 3, 10, 0, 0, 0, time.UTC)
	for _, in := range []string{"2018-11-03T10:00:00", "2018-11-03 10:00:00", "2018-11-03T10:00:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	got, err := ParseDate("2018-11-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, time.November, 3, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("yesterday-ish")
	assert.ErrorIs(t, err, ErrTask)
}
