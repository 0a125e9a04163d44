package warehouse

import (
	"fmt"
	"strings"

	"github.com/gigapi/gigapi-metastore/config"
)

const (
	DriverDuckDB   = "duckdb"
	DriverRedshift = "redshift"
)

// FromConfig returns an uninitialized client for the configured driver.
func FromConfig(cfg config.WarehouseConfig) (*Client, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverDuckDB, "":
		return NewDuckDB(cfg.Path), nil
	case DriverRedshift, "postgres":
		return NewRedshift(Settings{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			User:     cfg.User,
			Password: cfg.Password,
			SSLMode:  cfg.SSLMode,
		})
	}
	return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Driver)
}
