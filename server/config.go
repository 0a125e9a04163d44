package server

import (
	"context"

	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/config"
	"github.com/gigapi/gigapi-metastore/lake"
	"github.com/gigapi/gigapi-metastore/warehouse"
)

// FromConfig builds the lake and an initialized warehouse client from cfg.
func FromConfig(ctx context.Context, cfg *config.Configuration, fs afero.Fs) (*Server, error) {
	l, err := lake.FromConfig(ctx, cfg, fs)
	if err != nil {
		return nil, err
	}
	client, err := warehouse.FromConfig(cfg.Warehouse)
	if err != nil {
		return nil, err
	}
	if err := client.Initialize(); err != nil {
		return nil, err
	}
	return NewServer(l, client), nil
}
