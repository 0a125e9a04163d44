package metastore

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runDate = time.Date(2018, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestTablePaths(t *testing.T) {
	tbl := NewTable("data/warehouse", "orders")
	assert.Equal(t, "data/warehouse/orders", tbl.Path())
	assert.Equal(t, "data/warehouse/orders/year=2018/month=11/day=03", tbl.PathAt(runDate))

	hourly := NewTable("s3://lake/raw", "Clicks", WithGranularity(GranularityYearMonthDayHour), WithDialect(DialectPlain))
	assert.Equal(t, "s3://lake/raw/Clicks/2018/11/03/10", hourly.PathAt(runDate))
	assert.Equal(t, "s3://lake/raw/clicks", hourly.Prefix())

	flat := NewTable("data", "dim", WithGranularity(GranularityNone))
	assert.Equal(t, "data/dim", flat.PathAt(runDate))
}

func TestTableYearGranularity(t *testing.T) {
	legacy := NewTable("data", "yearly", WithGranularity(GranularityYear))
	assert.Equal(t, "data/yearly/year=2018/month=11", legacy.PathAt(runDate))

	strict := NewTable("data", "yearly", WithGranularity(GranularityYear), WithStrictYear())
	assert.Equal(t, "data/yearly/year=2018", strict.PathAt(runDate))
}

func TestTableBucketAndKey(t *testing.T) {
	tbl := NewTable("s3://mybucket/a/b", "c")
	bucket, key := tbl.BucketAndKey()
	assert.Equal(t, "mybucket", bucket)
	assert.Equal(t, "a/b/c", key)

	bucket, key = tbl.BucketAndKeyAt(runDate)
	assert.Equal(t, "mybucket", bucket)
	assert.Equal(t, "a/b/c/year=2018/month=11/day=03", key)

	bucket, key = NewTable("/local/root", "t").BucketAndKey()
	assert.Empty(t, bucket)
	assert.Equal(t, "local/root/t", key)
}

func TestTableMeta(t *testing.T) {
	tbl := NewTable("r", "orders", WithSchema(SchemaRef{Module: "/schemas/", Path: "orders.json"}))
	assert.Equal(t, "orders\t/schemas/orders.json", tbl.Meta())
}

func TestTablePartitionKeysCopied(t *testing.T) {
	keys := []string{"region", "shard"}
	tbl := NewTable("r", "events", WithPartitionKeys(keys...))
	keys[0] = "mutated"
	got := tbl.PartitionKeys()
	got[1] = "mutated"
	assert.Equal(t, []string{"region", "shard"}, tbl.PartitionKeys())
	assert.True(t, tbl.Partitioned())
	assert.Equal(t, "r/events", tbl.PathAt(runDate))
}

func memSchemas(t *testing.T, files map[string]string) SchemaStore {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return NewFSSchemaStore(fs)
}

func TestSchemaColumnNames(t *testing.T) {
	store := memSchemas(t, map[string]string{
		"/schemas/orders.json":     `{"type":"record","fields":[{"name":"id","type":"long"},{"name":"amount","type":"double"}]}`,
		"/schemas/broken.json":     `{"fields":[{"type":"long"}]}`,
		"/schemas/nolist.json":     `{"fields":"id"}`,
		"/schemas/notjson.json":    `fields: [id]`,
		"/schemas/nullfields.json": `{"fields":null}`,
		"/schemas/nulldoc.json":    `null`,
		"/schemas/empty.json":      `{"fields":[]}`,
	})
	ctx := context.Background()
	schema := func(p string) TableOption { return WithSchema(SchemaRef{Module: "/schemas", Path: p}) }

	cols, err := NewTable("r", "orders", schema("orders.json")).SchemaColumnNames(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, cols)

	cols, err = NewTable("r", "empty", schema("empty.json")).SchemaColumnNames(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, cols)

	for _, name := range []string{"broken.json", "nolist.json", "notjson.json", "nullfields.json", "nulldoc.json"} {
		_, err = NewTable("r", "x", schema(name)).SchemaColumnNames(ctx, store)
		assert.ErrorIs(t, err, ErrSchemaMalformed, name)
	}

	_, err = NewTable("r", "x", schema("absent.json")).SchemaColumnNames(ctx, store)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)

	_, err = NewTable("r", "x").SchemaColumnNames(ctx, store)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)

	_, err = NewTable("r", "x", schema("orders.json")).SchemaColumnNames(ctx, nil)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
}

type failingStore struct{ err error }

func (s failingStore) Resolve(context.Context, string, string) (io.ReadCloser, error) {
	return nil, s.err
}

func TestSchemaColumnNamesKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	tbl := NewTable("r", "x", WithSchema(SchemaRef{Path: "x.json"}))
	_, err := tbl.SchemaColumnNames(context.Background(), failingStore{err: cause})
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
	assert.ErrorIs(t, err, cause)
}
