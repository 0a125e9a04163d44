package lake

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gigapi/gigapi-metastore/metastore"
)

// PartitionPaths returns the distinct partition paths of t covering [start, end], oldest first.
func PartitionPaths(t *metastore.Table, start, end time.Time) []string {
	if t.Partitioned() || t.Granularity().Segments() == 0 {
		return []string{t.Path()}
	}
	y, m, d := start.Date()
	var cur time.Time
	var step func(time.Time) time.Time
	switch t.Granularity() {
	case metastore.GranularityYearMonthDayHour:
		cur = time.Date(y, m, d, start.Hour(), 0, 0, 0, start.Location())
		step = func(c time.Time) time.Time { return c.Add(time.Hour) }
	case metastore.GranularityYearMonthDay:
		cur = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
		step = func(c time.Time) time.Time { return c.AddDate(0, 0, 1) }
	default:
		cur = time.Date(y, m, 1, 0, 0, 0, 0, start.Location())
		step = func(c time.Time) time.Time { return c.AddDate(0, 1, 0) }
	}
	var paths []string
	for ; !cur.After(end); cur = step(cur) {
		p := t.PathAt(cur)
		if len(paths) == 0 || paths[len(paths)-1] != p {
			paths = append(paths, p)
		}
	}
	return paths
}

// FilesBetween lists the files of every partition covering [start, end].
func (l *Lake) FilesBetween(ctx context.Context, db, table string, start, end time.Time) ([]FileInfo, error) {
	t, err := l.Metastore.Table(db, table)
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, p := range PartitionPaths(t, start, end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := l.files(ctx, p)
		if err != nil {
			return nil, err
		}
		files = append(files, part...)
	}
	return files, nil
}

var readers = map[string]string{
	".parquet": "read_parquet",
	".json":    "read_json_auto",
	".ndjson":  "read_json_auto",
	".csv":     "read_csv_auto",
}

// ScanQuery builds a DuckDB query reading the table files between start and end.
// The reader is picked from the first file's extension; files of other formats are skipped.
func (l *Lake) ScanQuery(ctx context.Context, db, table string, start, end time.Time) (string, error) {
	files, err := l.FilesBetween(ctx, db, table, start, end)
	if err != nil {
		return "", err
	}
	var reader, ext string
	var list strings.Builder
	for _, f := range files {
		e := strings.ToLower(path.Ext(f.Key))
		r, ok := readers[e]
		if !ok {
			continue
		}
		if reader == "" {
			reader, ext = r, e
		}
		if e != ext {
			continue
		}
		if list.Len() > 0 {
			list.WriteString(", ")
		}
		fmt.Fprintf(&list, "'%s'", strings.ReplaceAll(f.URI, "'", "''"))
	}
	if reader == "" {
		return "", fmt.Errorf("no readable files for %s.%s between %s and %s", db, table,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	opts := ""
	if reader == "read_parquet" {
		opts = ", union_by_name=true"
	}
	return fmt.Sprintf("SELECT * FROM %s([%s]%s)", reader, list.String(), opts), nil
}
