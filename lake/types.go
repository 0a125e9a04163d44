package lake

import "time"

// FileInfo is one object of a table partition.
type FileInfo struct {
	URI          string    `json:"uri"`
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// TableMetadata describes a table and the files found under the requested location.
type TableMetadata struct {
	Database      string     `json:"database"`
	Table         string     `json:"table"`
	Path          string     `json:"path"`
	Schema        string     `json:"schema,omitempty"`
	Granularity   string     `json:"granularity"`
	Dialect       string     `json:"dialect"`
	PartitionKeys []string   `json:"partition_keys,omitempty"`
	SizeBytes     int64      `json:"size_bytes"`
	FileCount     int        `json:"file_count"`
	MinModified   *time.Time `json:"min_modified,omitempty"`
	MaxModified   *time.Time `json:"max_modified,omitempty"`
	Files         []FileInfo `json:"files"`
}
