// Package config loads herdcore runtime configuration with viper. Values
// resolve from an optional config file, then HERDCORE_* environment
// variables, then defaults.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config captures the runtime settings shared by herdcore binaries.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects and parameterises the persistent store.
type StorageConfig struct {
	// Driver is one of memory, sqlite, postgres.
	Driver string `mapstructure:"driver"`
	// Path is the database file when driver=sqlite.
	Path string `mapstructure:"path"`
	// DSN is the connection string when driver=postgres.
	DSN string `mapstructure:"dsn"`
}

// BlobConfig selects the archive backend.
type BlobConfig struct {
	// Driver is one of fs, s3, memory.
	Driver string `mapstructure:"driver"`
	// Root is the directory root when driver=fs.
	Root string `mapstructure:"root"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults installs default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "herdcore.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("blob.driver", "fs")
	v.SetDefault("blob.root", "./blobdata")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads configuration from the optional file path and the environment.
// An empty path skips file loading entirely.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("HERDCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}
