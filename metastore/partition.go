package metastore

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gigapi/gigapi-metastore/blobstore"
)

const DefaultSeparator = "="

type partitionOptions struct {
	separator string
}

type PartitionOption func(*partitionOptions)

// WithSeparator sets the string between a partition key and its value.
func WithSeparator(sep string) PartitionOption {
	return func(o *partitionOptions) { o.separator = sep }
}

// Partition is a table bound to one set of partition values.
type Partition struct {
	table     *Table
	values    []string
	separator string
	path      string
}

func (p Partition) Table() *Table     { return p.table }
func (p Partition) Values() []string  { return slices.Clone(p.values) }
func (p Partition) Separator() string { return p.separator }
func (p Partition) Path() string      { return p.path }

func (p Partition) BucketAndKey() (bucket, key string) {
	return blobstore.ParsePath(p.path)
}

// ObjectKey is the bucket and key of filename inside the partition.
func (p Partition) ObjectKey(filename string) (bucket, key string) {
	return blobstore.ParsePath(p.path + "/" + filename)
}

// PathByValues renders root/name/k1=v1/k2=v2 for the table's partition keys.
func (t *Table) PathByValues(values []string, opts ...PartitionOption) (string, error) {
	p, err := t.Attach(values, opts...)
	if err != nil {
		return "", err
	}
	return p.path, nil
}

// Attach binds values to the table's partition keys, in key order.
func (t *Table) Attach(values []string, opts ...PartitionOption) (Partition, error) {
	o := partitionOptions{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	if len(values) != len(t.keys) {
		return Partition{}, fmt.Errorf("%w: table %s has %d partition keys, got %d values",
			ErrPartitionArityMismatch, t.name, len(t.keys), len(values))
	}
	var b strings.Builder
	b.WriteString(t.Path())
	for i, key := range t.keys {
		b.WriteByte('/')
		b.WriteString(key)
		b.WriteString(o.separator)
		b.WriteString(values[i])
	}
	return Partition{
		table:     t,
		values:    slices.Clone(values),
		separator: o.separator,
		path:      b.String(),
	}, nil
}

// BucketAndKeyByValues locates filename inside the partition named by values.
func (t *Table) BucketAndKeyByValues(values []string, filename string, opts ...PartitionOption) (bucket, key string, err error) {
	p, err := t.Attach(values, opts...)
	if err != nil {
		return "", "", err
	}
	bucket, key = p.ObjectKey(filename)
	return bucket, key, nil
}
