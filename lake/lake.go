package lake

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/blobstore"
	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/metastore"
)

var errFound = errors.New("found")

// Lake resolves catalog tables to blob store locations and works on the objects there.
type Lake struct {
	Metastore *metastore.Metastore
	Store     blobstore.Store
	Schemas   metastore.SchemaStore
}

func New(m *metastore.Metastore, store blobstore.Store, schemas metastore.SchemaStore) *Lake {
	return &Lake{Metastore: m, Store: store, Schemas: schemas}
}

// Location is the path a request resolves to: the table path at a date, the
// partition named by values, or the table root when neither is given.
type Location struct {
	At     *time.Time
	Values []string
}

func (l *Lake) resolve(db, table string, loc Location) (*metastore.Table, string, error) {
	t, err := l.Metastore.Table(db, table)
	if err != nil {
		return nil, "", err
	}
	switch {
	case loc.Values != nil:
		if !t.Partitioned() {
			return nil, "", fmt.Errorf("%w: table %s.%s has no partition keys",
				metastore.ErrPartitionArityMismatch, db, table)
		}
		p, err := t.PathByValues(loc.Values)
		if err != nil {
			return nil, "", err
		}
		return t, p, nil
	case loc.At != nil:
		return t, t.PathAt(*loc.At), nil
	}
	return t, t.Path(), nil
}

func (l *Lake) files(ctx context.Context, p string) ([]FileInfo, error) {
	bucket, prefix := blobstore.ParsePath(p)
	if prefix != "" {
		prefix += "/"
	}
	var files []FileInfo
	err := l.Store.Walk(ctx, bucket, prefix, func(o blobstore.Object) error {
		files = append(files, FileInfo{
			URI:          l.Store.ObjectURI(bucket, o.Key),
			Key:          o.Key,
			SizeBytes:    o.Size,
			LastModified: o.LastModified,
		})
		return nil
	})
	return files, err
}

// ListFiles returns the objects stored under the resolved location.
func (l *Lake) ListFiles(ctx context.Context, db, table string, loc Location) ([]FileInfo, error) {
	_, p, err := l.resolve(db, table, loc)
	if err != nil {
		return nil, err
	}
	return l.files(ctx, p)
}

// TableMetadata merges the file listing under the resolved location into one description.
func (l *Lake) TableMetadata(ctx context.Context, db, table string, loc Location) (*TableMetadata, error) {
	t, p, err := l.resolve(db, table, loc)
	if err != nil {
		return nil, err
	}
	files, err := l.files(ctx, p)
	if err != nil {
		return nil, err
	}
	meta := &TableMetadata{
		Database:      db,
		Table:         t.Name(),
		Path:          p,
		Schema:        t.Schema().String(),
		Granularity:   t.Granularity().String(),
		Dialect:       t.Dialect().String(),
		PartitionKeys: t.PartitionKeys(),
		FileCount:     len(files),
		Files:         files,
	}
	for i := range files {
		f := &files[i]
		meta.SizeBytes += f.SizeBytes
		if meta.MinModified == nil || f.LastModified.Before(*meta.MinModified) {
			meta.MinModified = &f.LastModified
		}
		if meta.MaxModified == nil || f.LastModified.After(*meta.MaxModified) {
			meta.MaxModified = &f.LastModified
		}
	}
	return meta, nil
}

// PartitionExists reports whether any object is stored for the table at ts.
func (l *Lake) PartitionExists(ctx context.Context, db, table string, ts time.Time) (bool, error) {
	_, p, err := l.resolve(db, table, Location{At: &ts})
	if err != nil {
		return false, err
	}
	bucket, prefix := blobstore.ParsePath(p)
	found := false
	err = l.Store.Walk(ctx, bucket, prefix+"/", func(blobstore.Object) error {
		found = true
		return errFound
	})
	if err != nil && !errors.Is(err, errFound) {
		return false, err
	}
	return found, nil
}

// UploadFile copies filename from fs into the table location, keeping its base name.
// It returns the URI the file was written to.
func (l *Lake) UploadFile(ctx context.Context, db, table string, loc Location, fs afero.Fs, filename string) (string, error) {
	_, p, err := l.resolve(db, table, loc)
	if err != nil {
		return "", err
	}
	bucket, prefix := blobstore.ParsePath(p)
	uri := blobstore.URI(bucket, path.Join(prefix, path.Base(filename)))
	if err := blobstore.UploadFile(ctx, l.Store, fs, filename, uri); err != nil {
		return "", err
	}
	core.Infof(ctx, "uploaded %s to %s.%s at %s", filename, db, table, uri)
	return uri, nil
}

// DeletePartition removes every object under the resolved location.
func (l *Lake) DeletePartition(ctx context.Context, db, table string, loc Location) error {
	_, p, err := l.resolve(db, table, loc)
	if err != nil {
		return err
	}
	bucket, prefix := blobstore.ParsePath(p)
	core.Infof(ctx, "deleting %s.%s objects under %s", db, table, p)
	return l.Store.Delete(ctx, bucket, prefix+"/")
}

// Columns returns the column names of the table schema.
func (l *Lake) Columns(ctx context.Context, db, table string) ([]string, error) {
	t, err := l.Metastore.Table(db, table)
	if err != nil {
		return nil, err
	}
	return t.SchemaColumnNames(ctx, l.Schemas)
}

// ReadPartitionAvro decodes filename from the partition named by values.
func (l *Lake) ReadPartitionAvro(ctx context.Context, db, table string, values []string, filename string) ([]map[string]any, error) {
	t, err := l.Metastore.Table(db, table)
	if err != nil {
		return nil, err
	}
	bucket, key, err := t.BucketAndKeyByValues(values, filename)
	if err != nil {
		return nil, err
	}
	return blobstore.ReadAvro(ctx, l.Store, blobstore.URI(bucket, key))
}
