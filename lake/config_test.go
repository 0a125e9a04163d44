package lake

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigapi/gigapi-metastore/blobstore"
	"github.com/gigapi/gigapi-metastore/config"
)

func TestFromConfigLocal(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/schemas/orders.json", []byte(`{"fields":[{"name":"id"}]}`), 0o644))

	cfg := &config.Configuration{
		Storage: config.StorageConfig{Provider: "local", Root: "/blobs"},
		Metastore: config.MetastoreConfig{
			Name:        "etl",
			SchemaStore: "/schemas",
			Databases: []config.DatabaseConfig{{
				Name:   "raw",
				Root:   "s3://lake/raw",
				Tables: []config.TableConfig{{Name: "orders", Schema: "orders.json"}},
			}},
		},
	}
	l, err := FromConfig(context.Background(), cfg, fs)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, l.Store)

	cols, err := l.Columns(context.Background(), "raw", "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, cols)
}

func TestFromConfigErrors(t *testing.T) {
	_, err := FromConfig(context.Background(), &config.Configuration{
		Storage: config.StorageConfig{Provider: "ftp"},
	}, afero.NewMemMapFs())
	assert.Error(t, err)

	_, err = FromConfig(context.Background(), &config.Configuration{
		Metastore: config.MetastoreConfig{Databases: []config.DatabaseConfig{{Root: "s3://lake"}}},
	}, afero.NewMemMapFs())
	assert.Error(t, err)
}
