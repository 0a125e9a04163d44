package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gigapi/gigapi-metastore/core"
)

// SchemaStore resolves schema documents kept in a blob store. The module is a
// URI prefix (s3://bucket/schemas) and the relative path is appended to it.
type SchemaStore struct {
	store      Store
	maxElapsed time.Duration
}

func NewSchemaStore(store Store) *SchemaStore {
	return &SchemaStore{store: store, maxElapsed: 30 * time.Second}
}

// WithMaxElapsed bounds how long Resolve keeps retrying.
func (s *SchemaStore) WithMaxElapsed(d time.Duration) *SchemaStore {
	s.maxElapsed = d
	return s
}

func (s *SchemaStore) Resolve(ctx context.Context, module, relPath string) (io.ReadCloser, error) {
	bucket, prefix := ParsePath(module)
	key := path.Join(prefix, relPath)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.maxElapsed

	var data []byte
	op := func() error {
		rc, err := s.store.Get(ctx, bucket, key)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return err
	}
	notify := func(err error, wait time.Duration) {
		core.Warnf(ctx, "schema %s/%s unavailable, retrying in %v: %v", bucket, key, wait, err)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
