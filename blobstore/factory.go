package blobstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const (
	ProviderS3    = "S3"
	ProviderMinio = "MINIO"
	ProviderLocal = "LOCAL"
)

type Settings struct {
	Provider  string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	// Root is the base directory of the LOCAL provider.
	Root string
	Fs   afero.Fs
}

// New returns a Store backed by the configured provider.
func New(ctx context.Context, settings Settings) (Store, error) {
	switch strings.ToUpper(settings.Provider) {
	case ProviderS3:
		return NewS3StoreFromConfig(ctx, settings.Region, settings.Endpoint)
	case ProviderMinio:
		return NewMinioStore(settings.Endpoint, settings.AccessKey, settings.SecretKey, settings.Secure)
	case ProviderLocal, "":
		return NewLocalStore(settings.Fs, settings.Root), nil
	}
	return nil, fmt.Errorf("no blob store provider %q", settings.Provider)
}
