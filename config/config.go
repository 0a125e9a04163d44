package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type TableConfig struct {
	Name          string   `mapstructure:"name"`
	Schema        string   `mapstructure:"schema"`
	Partition     string   `mapstructure:"partition"`
	Dialect       string   `mapstructure:"dialect"`
	PartitionKeys []string `mapstructure:"partition_keys"`
	StrictYear    bool     `mapstructure:"strict_year"`
}

type DatabaseConfig struct {
	Name        string        `mapstructure:"name"`
	Root        string        `mapstructure:"root"`
	SchemaStore string        `mapstructure:"schema_store"`
	Partition   string        `mapstructure:"partition"`
	Tables      []TableConfig `mapstructure:"tables"`
}

type MetastoreConfig struct {
	Name        string           `mapstructure:"name"`
	SchemaStore string           `mapstructure:"schema_store"`
	Databases   []DatabaseConfig `mapstructure:"databases"`
}

type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	Root      string `mapstructure:"root"`
}

type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type WarehouseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

type Configuration struct {
	Port       int             `mapstructure:"port"`
	FlightPort int             `mapstructure:"flight_port"`
	LogLevel   string          `mapstructure:"log_level"`
	Metastore  MetastoreConfig `mapstructure:"metastore"`
	Storage    StorageConfig   `mapstructure:"storage"`
	DynamoDB   DynamoDBConfig  `mapstructure:"dynamodb"`
	Warehouse  WarehouseConfig `mapstructure:"warehouse"`
}

var Config *Configuration

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 7972)
	v.SetDefault("flight_port", 8082)
	v.SetDefault("log_level", "info")
	v.SetDefault("metastore.name", "default")
	v.SetDefault("storage.provider", "LOCAL")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("warehouse.driver", "duckdb")
	v.SetDefault("warehouse.port", 5439)
	v.SetDefault("warehouse.sslmode", "require")
}

// NewViper returns a viper instance with defaults and METASTORE_* environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("METASTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes v into a Configuration.
func Load(v *viper.Viper) (*Configuration, error) {
	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// InitConfig loads .env (if any) and the config file into the global Config.
// An empty file means defaults and environment only.
func InitConfig(file string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	v := NewViper()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	}
	cfg, err := Load(v)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}
