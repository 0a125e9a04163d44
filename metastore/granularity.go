package metastore

import (
	"fmt"
	"strings"
)

// Granularity is the time resolution a table's storage path is split by.
type Granularity string

const (
	GranularityNone             Granularity = ""
	GranularityYear             Granularity = "y"
	GranularityYearMonth        Granularity = "ym"
	GranularityYearMonthDay     Granularity = "ymd"
	GranularityYearMonthDayHour Granularity = "ymdh"
)

// ParseGranularity accepts the short tags (ymd) and the long names (year-month-day).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GranularityNone, nil
	case "y", "year":
		return GranularityYear, nil
	case "ym", "year-month":
		return GranularityYearMonth, nil
	case "ymd", "year-month-day":
		return GranularityYearMonthDay, nil
	case "ymdh", "year-month-day-hour":
		return GranularityYearMonthDayHour, nil
	}
	return GranularityNone, fmt.Errorf("unknown partition granularity %q", s)
}

// Segments is the number of path segments a timestamp expands into.
func (g Granularity) Segments() int {
	switch g {
	case GranularityYear:
		return 1
	case GranularityYearMonth:
		return 2
	case GranularityYearMonthDay:
		return 3
	case GranularityYearMonthDayHour:
		return 4
	}
	return 0
}

func (g Granularity) String() string {
	switch g {
	case GranularityYear:
		return "year"
	case GranularityYearMonth:
		return "year-month"
	case GranularityYearMonthDay:
		return "year-month-day"
	case GranularityYearMonthDayHour:
		return "year-month-day-hour"
	}
	return "none"
}

// Dialect selects how partition segments are rendered.
type Dialect int

const (
	// DialectLabeled renders key=value segments: year=2018/month=11.
	DialectLabeled Dialect = iota
	// DialectPlain renders bare values: 2018/11, the stream delivery layout.
	DialectPlain
)

// ParseDialect maps a config value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "labeled", "hive":
		return DialectLabeled, nil
	case "plain", "kinesis":
		return DialectPlain, nil
	}
	return DialectLabeled, fmt.Errorf("unknown partition dialect %q", s)
}

func (d Dialect) String() string {
	if d == DialectPlain {
		return "plain"
	}
	return "labeled"
}
