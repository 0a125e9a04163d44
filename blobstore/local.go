package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// LocalStore keeps objects on a filesystem: the bucket is a directory under
// root and keys are slash separated paths inside it.
type LocalStore struct {
	fs   afero.Fs
	root string
}

func NewLocalStore(fs afero.Fs, root string) *LocalStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalStore{fs: fs, root: root}
}

func (l *LocalStore) path(bucket, key string) string {
	return filepath.Join(l.root, bucket, filepath.FromSlash(key))
}

func (l *LocalStore) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	return collect(ctx, l, bucket, prefix)
}

// ObjectURI is the object's file path under the store root.
func (l *LocalStore) ObjectURI(bucket, key string) string {
	return l.path(bucket, key)
}

func (l *LocalStore) Walk(ctx context.Context, bucket, prefix string, fn func(Object) error) error {
	base := filepath.Join(l.root, bucket)
	var objects []Object
	err := afero.Walk(l.fs, base, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, Object{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	for _, o := range objects {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

func (l *LocalStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	f, err := l.fs.Open(l.path(bucket, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}
		return nil, err
	}
	return f, nil
}

func (l *LocalStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	p := l.path(bucket, key)
	if err := l.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return afero.WriteReader(l.fs, p, bytes.NewReader(data))
}

func (l *LocalStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	return afero.Exists(l.fs, l.path(bucket, key))
}

func (l *LocalStore) Delete(ctx context.Context, bucket, prefix string) error {
	objects, err := l.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	for _, o := range objects {
		if err := l.fs.Remove(l.path(bucket, path.Clean(o.Key))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
