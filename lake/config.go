package lake

import (
	"context"
	"strings"

	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/blobstore"
	"github.com/gigapi/gigapi-metastore/config"
	"github.com/gigapi/gigapi-metastore/metastore"
)

// FromConfig builds the metastore, blob store and schema store described by cfg.
// The LOCAL provider reads objects and schemas from fs; other providers
// keep schemas in the blob store next to the data.
func FromConfig(ctx context.Context, cfg *config.Configuration, fs afero.Fs) (*Lake, error) {
	m, err := metastore.FromConfig(cfg.Metastore)
	if err != nil {
		return nil, err
	}
	store, err := blobstore.New(ctx, blobstore.Settings{
		Provider:  cfg.Storage.Provider,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
		Root:      cfg.Storage.Root,
		Fs:        fs,
	})
	if err != nil {
		return nil, err
	}
	var schemas metastore.SchemaStore = blobstore.NewSchemaStore(store)
	if p := strings.ToUpper(cfg.Storage.Provider); p == blobstore.ProviderLocal || p == "" {
		schemas = metastore.NewFSSchemaStore(fs)
	}
	return New(m, store, schemas), nil
}
