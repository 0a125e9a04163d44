package metastore

import (
	"fmt"
	"strings"
	"time"
)

var segmentLabels = [...]string{"year", "month", "day", "hour"}

// FormatPath renders the partition fragment of t for granularity g.
// GranularityNone yields "".
func FormatPath(t time.Time, g Granularity, d Dialect) string {
	n := g.Segments()
	if n == 0 {
		return ""
	}
	values := [...]string{
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
		fmt.Sprintf("%02d", t.Hour()),
	}
	segments := make([]string, n)
	for i := range segments {
		if d == DialectLabeled {
			segments[i] = segmentLabels[i] + "=" + values[i]
		} else {
			segments[i] = values[i]
		}
	}
	return strings.Join(segments, "/")
}
