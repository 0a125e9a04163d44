package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gigapi/gigapi-metastore/core"
)

const noSuchKey = "NoSuchKey"

// MinioStore talks to S3 compatible endpoints through minio-go.
type MinioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, secure bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", endpoint, err)
	}
	return &MinioStore{client: client}, nil
}

func (m *MinioStore) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	return collect(ctx, m, bucket, prefix)
}

func (m *MinioStore) Walk(ctx context.Context, bucket, prefix string, fn func(Object) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for info := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return fmt.Errorf("list %s/%s: %w", bucket, prefix, info.Err)
		}
		if err := fn(Object{Key: info.Key, Size: info.Size, LastModified: info.LastModified}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MinioStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.wrap(err, "get", bucket, key)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, m.wrap(err, "get", bucket, key)
	}
	return obj, nil
}

func (m *MinioStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *MinioStore) ObjectURI(bucket, key string) string {
	return URI(bucket, key)
}

func (m *MinioStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
}

func (m *MinioStore) Delete(ctx context.Context, bucket, prefix string) error {
	objects, err := m.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		for _, o := range objects {
			select {
			case ch <- minio.ObjectInfo{Key: o.Key}:
			case <-ctx.Done():
				return
			}
		}
	}()
	var firstErr error
	for rerr := range m.client.RemoveObjects(ctx, bucket, ch, minio.RemoveObjectsOptions{}) {
		core.Errorf(ctx, "error removing %s/%s: %v", bucket, rerr.ObjectName, rerr.Err)
		if firstErr == nil {
			firstErr = fmt.Errorf("delete %s/%s: %w", bucket, rerr.ObjectName, rerr.Err)
		}
	}
	return firstErr
}

func (m *MinioStore) wrap(err error, op, bucket, key string) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	return fmt.Errorf("%s %s/%s: %w", op, bucket, key, err)
}
