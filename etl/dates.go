package etl

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// RunDateLayout is the timestamp layout pipeline run dates are passed in.
	RunDateLayout = "2006-01-02T15:04:05"
	// DayLayout is the layout of a calendar day.
	DayLayout = "2006-01-02"
	// HourLayout names one hour of a day, e.g. 2018-11-03-10.
	HourLayout      = "2006-01-02-15"
	timestampLayout = "2006-01-02 15:04:05"
)

// ParseRunDate parses a run date in RunDateLayout. The result is in UTC.
func ParseRunDate(s string) (time.Time, error) {
	return time.Parse(RunDateLayout, s)
}

// ParseDate accepts a run date, a plain day or any layout dateparse understands.
// Times without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := ParseRunDate(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, NewTaskError(fmt.Sprintf("not a valid date: '%s'", s), map[string]any{"layout": RunDateLayout})
	}
	return t, nil
}

// ValidateDate returns s unchanged when it is a valid run date.
func ValidateDate(s string) (string, error) {
	if _, err := ParseRunDate(s); err != nil {
		return "", NewTaskError(fmt.Sprintf("not a valid date: '%s'", s), map[string]any{"layout": RunDateLayout})
	}
	return s, nil
}

// RuntimeDate renders the UTC day of now.
func RuntimeDate(now time.Time) string {
	return now.UTC().Format(DayLayout)
}

// Timestamp renders now in UTC as "YYYY-MM-DD HH:MM:SS".
func Timestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout)
}

// HourlySeries expands a day (YYYY-MM-DD) into its 24 hour names.
func HourlySeries(day string) ([]string, error) {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		return nil, err
	}
	series := make([]string, 24)
	for h := range series {
		series[h] = d.Add(time.Duration(h) * time.Hour).Format(HourLayout)
	}
	return series, nil
}

// SplitDuration breaks whole seconds into days, hours, minutes and seconds.
func SplitDuration(totalSeconds float64) (days, hours, minutes, seconds int) {
	seconds = int(totalSeconds)
	minutes, seconds = seconds/60, seconds%60
	hours, minutes = minutes/60, minutes%60
	days, hours = hours/24, hours%24
	return
}

// SecondsToString renders a run time like "1 days, 2 hours, 3 minutes, 4 seconds".
func SecondsToString(totalSeconds float64) string {
	d, h, m, s := SplitDuration(totalSeconds)
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", d, h, m, s)
}

// ConvertTimezone parses ts in any common layout and returns the same instant in zone.
func ConvertTimezone(ts, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := dateparse.ParseAny(ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// ReplaceTimezone keeps the wall clock of ts and reinterprets it in zone.
func ReplaceTimezone(ts, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := dateparse.ParseAny(ts)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
}
