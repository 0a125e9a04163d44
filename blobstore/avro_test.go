package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersSchema = `{"type":"record","name":"order","fields":[{"name":"id","type":"long"},{"name":"region","type":"string"}]}`

func TestReadAvro(t *testing.T) {
	var buf bytes.Buffer
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: &buf, Schema: ordersSchema})
	require.NoError(t, err)
	require.NoError(t, w.Append([]any{
		map[string]any{"id": int64(1), "region": "eu"},
		map[string]any{"id": int64(2), "region": "us"},
	}))

	ctx := context.Background()
	store := NewLocalStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, store.Put(ctx, "lake", "orders/part-0.avro", buf.Bytes()))

	rows, err := ReadAvro(ctx, store, "s3://lake/orders/part-0.avro")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "us", rows[1]["region"])

	require.NoError(t, store.Put(ctx, "lake", "orders/bad.avro", []byte("not avro")))
	_, err = ReadAvro(ctx, store, "s3://lake/orders/bad.avro")
	assert.Error(t, err)
}
