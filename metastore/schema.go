package metastore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SchemaRef locates a schema document: a module (base path) and a path relative to it.
type SchemaRef struct {
	Module string
	Path   string
}

func (r SchemaRef) IsZero() bool {
	return r.Path == ""
}

func (r SchemaRef) String() string {
	if r.Module == "" {
		return r.Path
	}
	return strings.TrimSuffix(r.Module, "/") + "/" + strings.TrimPrefix(r.Path, "/")
}

// SchemaStore resolves schema documents. Implementations own their I/O and retry policy.
type SchemaStore interface {
	Resolve(ctx context.Context, module, relPath string) (io.ReadCloser, error)
}

// FSSchemaStore resolves schemas from a filesystem, module being a directory.
type FSSchemaStore struct {
	Fs afero.Fs
}

// NewFSSchemaStore creates a FSSchemaStore; a nil fs means the OS filesystem.
func NewFSSchemaStore(fs afero.Fs) *FSSchemaStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FSSchemaStore{Fs: fs}
}

func (s *FSSchemaStore) Resolve(ctx context.Context, module, relPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Fs.Open(filepath.Join(module, relPath))
}

// ParseSchemaColumns reads a schema document ({"fields": [{"name": ...}, ...]})
// and returns the field names in document order.
func ParseSchemaColumns(r io.Reader) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMalformed, err)
	}
	raw, ok := doc["fields"]
	if !ok {
		return nil, fmt.Errorf("%w: no fields list", ErrSchemaMalformed)
	}
	var fields []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: fields is not a list of objects", ErrSchemaMalformed)
	}
	columns := make([]string, len(fields))
	for i, field := range fields {
		if field == nil {
			return nil, fmt.Errorf("%w: field %d is not an object", ErrSchemaMalformed, i)
		}
		if err := json.Unmarshal(field["name"], &columns[i]); err != nil || columns[i] == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrSchemaMalformed, i)
		}
	}
	return columns, nil
}
