package metastore

import (
	"fmt"

	"github.com/gigapi/gigapi-metastore/config"
)

// FromConfig builds a Metastore from the metastore config section.
// A database without its own schema store inherits the metastore one.
func FromConfig(cfg config.MetastoreConfig) (*Metastore, error) {
	m := New(cfg.Name)
	for _, dbc := range cfg.Databases {
		if dbc.Name == "" {
			return nil, fmt.Errorf("database without name at root %q", dbc.Root)
		}
		g := DefaultGranularity
		if dbc.Partition != "" {
			var err error
			if g, err = ParseGranularity(dbc.Partition); err != nil {
				return nil, fmt.Errorf("database %s: %w", dbc.Name, err)
			}
		}
		schemaStore := dbc.SchemaStore
		if schemaStore == "" {
			schemaStore = cfg.SchemaStore
		}
		db := NewDatabase(dbc.Name, dbc.Root, WithSchemaStore(schemaStore), WithDefaultGranularity(g))
		for _, tc := range dbc.Tables {
			opts, err := tableOptions(tc)
			if err != nil {
				return nil, fmt.Errorf("table %s.%s: %w", dbc.Name, tc.Name, err)
			}
			db.RegisterTable(tc.Name, tc.Schema, opts...)
		}
		m.RegisterDatabase(dbc.Name, db)
	}
	return m, nil
}

func tableOptions(tc config.TableConfig) ([]TableOption, error) {
	var opts []TableOption
	if tc.Partition != "" {
		g, err := ParseGranularity(tc.Partition)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithGranularity(g))
	}
	if tc.Dialect != "" {
		d, err := ParseDialect(tc.Dialect)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDialect(d))
	}
	if len(tc.PartitionKeys) > 0 {
		opts = append(opts, WithPartitionKeys(tc.PartitionKeys...))
	}
	if tc.StrictYear {
		opts = append(opts, WithStrictYear())
	}
	return opts, nil
}
