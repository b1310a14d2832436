package config

import (
	"errors"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Merge    MergeConfig    `mapstructure:"merge"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	DatabaseName     string `mapstructure:"database_name"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Type string          `mapstructure:"type"` // mongodb, file
	File FileStoreConfig `mapstructure:"file"`
}

// FileStoreConfig holds the file system storage configuration.
type FileStoreConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds the read cache configuration.
type CacheConfig struct {
	Type  string        `mapstructure:"type"` // none, memory, redis
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds the Redis connection configuration.
type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

// MergeConfig holds the document merge defaults.
type MergeConfig struct {
	DefaultPolicy     string `mapstructure:"default_policy"` // replace, patch
	PrivatePrefix     string `mapstructure:"private_prefix"`
	StrictIdentifiers bool   `mapstructure:"strict_identifiers"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, text
	Output     string `mapstructure:"output"`      // stdout, file
	FilePath   string `mapstructure:"file_path"`   // Path to log file
	MaxSize    int    `mapstructure:"max_size"`    // Megabytes
	MaxBackups int    `mapstructure:"max_backups"` // Number of backups
	MaxAge     int    `mapstructure:"max_age"`     // Days
	Compress   bool   `mapstructure:"compress"`    // Compress backups
}

// Defaults returns the values used for settings left empty.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			ConnectionString: "mongodb://localhost:27017",
			DatabaseName:     "mongoutils",
		},
		Storage: StorageConfig{
			Type: "mongodb",
			File: FileStoreConfig{Path: "./data"},
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  5 * time.Minute,
			Redis: RedisConfig{
				URL:    "redis://localhost:6379/0",
				Prefix: "mongoutils:",
			},
		},
		Merge: MergeConfig{
			DefaultPolicy: "replace",
			PrivatePrefix: "_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

var envKeys = []string{
	"server.port",
	"database.connection_string",
	"database.database_name",
	"storage.type",
	"storage.file.path",
	"cache.type",
	"cache.ttl",
	"cache.redis.url",
	"cache.redis.prefix",
	"merge.default_policy",
	"merge.private_prefix",
	"merge.strict_identifiers",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.file_path",
	"logging.max_size",
	"logging.max_backups",
	"logging.max_age",
	"logging.compress",
}

// LoadConfig reads the configuration from an optional config file and
// environment variables, then fills unset values from Defaults.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..") // Check project root if running from cmd/mongoutils

	viper.SetEnvPrefix("MONGOUTILS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Without a file, env vars only reach Unmarshal for keys viper knows.
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return nil, err
	}

	return &cfg, nil
}
