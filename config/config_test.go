package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
port: 9000
metastore:
  name: analytics
  schema_store: /schemas
  databases:
    - name: warehouse
      root: s3://lake/warehouse
      partition: ymdh
      tables:
        - name: orders
          schema: orders.json
        - name: events
          schema: events.json
          partition_keys: [region, shard]
storage:
  provider: S3
`

func TestLoadYAML(t *testing.T) {
	v := NewViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(sampleYAML)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 8082, cfg.FlightPort)
	assert.Equal(t, "analytics", cfg.Metastore.Name)
	require.Len(t, cfg.Metastore.Databases, 1)
	db := cfg.Metastore.Databases[0]
	assert.Equal(t, "s3://lake/warehouse", db.Root)
	assert.Equal(t, "ymdh", db.Partition)
	require.Len(t, db.Tables, 2)
	assert.Equal(t, []string{"region", "shard"}, db.Tables[1].PartitionKeys)
	assert.Equal(t, "S3", cfg.Storage.Provider)
	assert.Equal(t, "duckdb", cfg.Warehouse.Driver)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("METASTORE_PORT", "8123")
	t.Setenv("METASTORE_STORAGE_PROVIDER", "MINIO")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Port)
	assert.Equal(t, "MINIO", cfg.Storage.Provider)
}

func TestInitConfigMissingFile(t *testing.T) {
	err := InitConfig(t.TempDir() + "/absent.yaml")
	assert.Error(t, err)
}
