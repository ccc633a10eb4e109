package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dropoff-locator/internal/repository"

	"github.com/spf13/viper"
)

// Feed source kinds.
const (
	SourceHTTP     = "http"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	FeedSource      string        `mapstructure:"FEED_SOURCE"`
	FeedURL         string        `mapstructure:"FEED_URL"`
	FeedFile        string        `mapstructure:"FEED_FILE"`
	FeedTimeout     time.Duration `mapstructure:"FEED_TIMEOUT"`
	DBSource        string        `mapstructure:"DB_SOURCE"`
	FeedTable       string        `mapstructure:"FEED_TABLE"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
	DefaultPageSize int           `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int           `mapstructure:"MAX_PAGE_SIZE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":    ":8080",
	"FEED_SOURCE":       SourceHTTP,
	"FEED_URL":          "",
	"FEED_FILE":         "",
	"FEED_TIMEOUT":      "10s",
	"DB_SOURCE":         "",
	"FEED_TABLE":        repository.DefaultTable,
	"REFRESH_INTERVAL":  "0s",
	"DEFAULT_PAGE_SIZE": 10,
	"MAX_PAGE_SIZE":     100,
	"LOG_LEVEL":         "info",
}

// LoadConfig reads configuration from app.env in path, overridden by environment variables.
// A missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	config.FeedSource = strings.ToLower(strings.TrimSpace(config.FeedSource))
	return config, config.Validate()
}

// Validate checks that the selected feed source is fully configured.
func (c Config) Validate() error {
	switch c.FeedSource {
	case SourceHTTP:
		if c.FeedURL == "" {
			return errors.New("config: FEED_URL is required for the http feed source")
		}
	case SourceFile:
		if c.FeedFile == "" {
			return errors.New("config: FEED_FILE is required for the file feed source")
		}
	case SourcePostgres:
		if c.DBSource == "" {
			return errors.New("config: DB_SOURCE is required for the postgres feed source")
		}
	default:
		return fmt.Errorf("config: unknown FEED_SOURCE %q", c.FeedSource)
	}

	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("config: invalid page sizes default=%d max=%d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}
