package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the object storage the catalog hands computed paths to.
type Store interface {
	// List returns every object under prefix, following all pages.
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
	// Walk calls fn for each object under prefix, one listing page at a time.
	// Returning an error from fn stops the walk.
	Walk(ctx context.Context, bucket, prefix string, fn func(Object) error) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
	// Delete removes every object under prefix.
	Delete(ctx context.Context, bucket, prefix string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// ObjectURI is where readers outside the store find the object.
	ObjectURI(bucket, key string) string
}

func collect(ctx context.Context, s Store, bucket, prefix string) ([]Object, error) {
	var res []Object
	err := s.Walk(ctx, bucket, prefix, func(o Object) error {
		res = append(res, o)
		return nil
	})
	return res, err
}

// ListURIs lists the objects under an s3:// URI and returns them as URIs.
func ListURIs(ctx context.Context, s Store, uri string) ([]string, error) {
	bucket, prefix := ParsePath(uri)
	objects, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(objects))
	for i, o := range objects {
		res[i] = URI(bucket, o.Key)
	}
	return res, nil
}

// GetText reads the object at uri as a string.
func GetText(ctx context.Context, s Store, uri string) (string, error) {
	bucket, key := ParsePath(uri)
	rc, err := s.Get(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	var b strings.Builder
	if _, err := io.Copy(&b, rc); err != nil {
		return "", fmt.Errorf("read %s: %w", uri, err)
	}
	return b.String(), nil
}

// UploadFile copies filename from fs to uri.
func UploadFile(ctx context.Context, s Store, fs afero.Fs, filename, uri string) error {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	bucket, key := ParsePath(uri)
	return s.Put(ctx, bucket, key, data)
}
