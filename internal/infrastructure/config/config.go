package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Backup     BackupConfig     `mapstructure:"backup"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database configuration. DSN wins over the discrete
// postgres fields when it is set.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VocabularyConfig selects where the deck comes from.
type VocabularyConfig struct {
	Path           string        `mapstructure:"path"`
	URL            string        `mapstructure:"url"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig enables the remote vocabulary cache when URL is set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// BackupConfig holds defaults for export/import commands.
type BackupConfig struct {
	Export BackupExportConfig `mapstructure:"export"`
	Import BackupImportConfig `mapstructure:"import"`
}

type BackupExportConfig struct {
	Output    string   `mapstructure:"output"`
	Gzip      bool     `mapstructure:"gzip"`
	Tables    []string `mapstructure:"tables"`
	BatchSize int      `mapstructure:"batch_size"`
}

type BackupImportConfig struct {
	Input  string   `mapstructure:"input"`
	Gzip   bool     `mapstructure:"gzip"`
	Tables []string `mapstructure:"tables"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration through the given viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	// An explicit file set through SetConfigFile skips the search path.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "italiano")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_sql", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Vocabulary defaults
	v.SetDefault("vocabulary.path", "data/vocabulary.json")
	v.SetDefault("vocabulary.url", "")
	v.SetDefault("vocabulary.reload_interval", 0)
	v.SetDefault("vocabulary.fetch_timeout", 15*time.Second)
	v.SetDefault("vocabulary.cache_ttl", 24*time.Hour)

	v.SetDefault("redis.url", "")

	// Backup defaults
	v.SetDefault("backup.export.output", "")
	v.SetDefault("backup.export.gzip", false)
	v.SetDefault("backup.export.tables", []string{})
	v.SetDefault("backup.export.batch_size", 0)
	v.SetDefault("backup.import.input", "")
	v.SetDefault("backup.import.gzip", false)
	v.SetDefault("backup.import.tables", []string{})
}

// DatabaseDriver returns the normalized database/sql driver name.
func (c *Config) DatabaseDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return "sqlite3", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the connection string for the configured driver.
func (c *Config) DatabaseURL() (string, error) {
	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn, nil
	}
	switch driver {
	case "sqlite3":
		return "file:italiano.db?_busy_timeout=5000&cache=shared", nil
	default:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Database.User, c.Database.Password),
			Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:     "/" + c.Database.Name,
			RawQuery: url.Values{"sslmode": []string{c.Database.SSLMode}}.Encode(),
		}
		return u.String(), nil
	}
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
