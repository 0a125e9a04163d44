package metastore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gigapi/gigapi-metastore/blobstore"
)

// Table describes where a dataset lives and how its storage path is partitioned.
// A Table is immutable once built.
type Table struct {
	name        string
	root        string
	schema      SchemaRef
	granularity Granularity
	dialect     Dialect
	keys        []string
	strictYear  bool
}

// TableOption configures a Table built by NewTable or RegisterTable.
type TableOption func(*Table)

// WithSchema sets the schema document the table's columns are read from.
func WithSchema(ref SchemaRef) TableOption {
	return func(t *Table) { t.schema = ref }
}

// WithGranularity sets how PathAt buckets a run date.
func WithGranularity(g Granularity) TableOption {
	return func(t *Table) { t.granularity = g }
}

// WithDialect picks labeled (year=2018) or plain (2018) path segments.
func WithDialect(d Dialect) TableOption {
	return func(t *Table) { t.dialect = d }
}

// WithPartitionKeys makes the table key-partitioned: its partitions are
// addressed by explicit values instead of a run date.
func WithPartitionKeys(keys ...string) TableOption {
	return func(t *Table) { t.keys = slices.Clone(keys) }
}

// WithStrictYear renders GranularityYear as a single year segment in PathAt.
// Without it a yearly table is laid out by year and month.
func WithStrictYear() TableOption {
	return func(t *Table) { t.strictYear = true }
}

// NewTable creates a time-partitioned table at root/name with daily granularity
// unless options say otherwise.
func NewTable(root, name string, opts ...TableOption) *Table {
	t := &Table{
		name:        name,
		root:        root,
		granularity: GranularityYearMonthDay,
		dialect:     DialectLabeled,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Table) Name() string             { return t.name }
func (t *Table) Root() string             { return t.root }
func (t *Table) Schema() SchemaRef        { return t.schema }
func (t *Table) Granularity() Granularity { return t.granularity }
func (t *Table) Dialect() Dialect         { return t.dialect }

// PartitionKeys returns a copy of the ordered partition keys.
func (t *Table) PartitionKeys() []string { return slices.Clone(t.keys) }

// Partitioned reports whether the table is addressed by partition values.
func (t *Table) Partitioned() bool { return len(t.keys) > 0 }

// Path is the unpartitioned location root/name.
func (t *Table) Path() string {
	return t.root + "/" + t.name
}

// PathAt is the location of the partition holding ts. Key-partitioned tables
// and tables without granularity return Path.
func (t *Table) PathAt(ts time.Time) string {
	if t.Partitioned() {
		return t.Path()
	}
	g := t.granularity
	if g == GranularityYear && !t.strictYear {
		g = GranularityYearMonth
	}
	fragment := FormatPath(ts, g, t.dialect)
	if fragment == "" {
		return t.Path()
	}
	return t.Path() + "/" + fragment
}

// Prefix is the lower-cased Path, used as a listing prefix.
func (t *Table) Prefix() string {
	return strings.ToLower(t.Path())
}

func (t *Table) BucketAndKey() (bucket, key string) {
	return blobstore.ParsePath(t.Path())
}

func (t *Table) BucketAndKeyAt(ts time.Time) (bucket, key string) {
	return blobstore.ParsePath(t.PathAt(ts))
}

// SchemaColumnNames resolves the table schema through store and returns its
// field names in order.
func (t *Table) SchemaColumnNames(ctx context.Context, store SchemaStore) ([]string, error) {
	if t.schema.IsZero() {
		return nil, fmt.Errorf("%w: table %s has no schema", ErrSchemaUnavailable, t.name)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: no schema store for %s", ErrSchemaUnavailable, t.schema)
	}
	rc, err := store.Resolve(ctx, t.schema.Module, t.schema.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaUnavailable, t.schema, err)
	}
	defer rc.Close()
	columns, err := ParseSchemaColumns(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.schema, err)
	}
	return columns, nil
}

// Meta is the tab separated name and schema reference.
func (t *Table) Meta() string {
	return t.name + "\t" + t.schema.String()
}
