package blobstore

import (
	"context"
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// ReadAvro decodes the avro object container file at uri into records.
func ReadAvro(ctx context.Context, s Store, uri string) ([]map[string]any, error) {
	bucket, key := ParsePath(uri)
	rc, err := s.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ocf, err := goavro.NewOCFReader(rc)
	if err != nil {
		return nil, fmt.Errorf("open avro %s: %w", uri, err)
	}
	var rows []map[string]any
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, fmt.Errorf("read avro %s: %w", uri, err)
		}
		row, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("read avro %s: record is %T", uri, datum)
		}
		rows = append(rows, row)
	}
	if err := ocf.Err(); err != nil {
		return nil, fmt.Errorf("read avro %s: %w", uri, err)
	}
	return rows, nil
}
