// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath     = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres", "mysql"}
)

// Setup prepares everything config-related so that the app can
// start working. A missing config.toml is fine since every key can
// come from the environment, but a malformed one is not.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flat names kept for compatibility with older deployments
	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE", "MAX_FILE_SIZE")
	v.BindEnv("video.min_duration", "VIDEO_MIN_DURATION", "MIN_DURATION")
	v.BindEnv("video.max_duration", "VIDEO_MAX_DURATION", "MAX_DURATION")
	v.BindEnv("storage.signed_url_expiration", "STORAGE_SIGNED_URL_EXPIRATION", "EXPIRATION_TIME")
	v.BindEnv("db.dsn", "DB_DSN", "DATABASE_URL")

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Validate()
}

// SetDefaults registers the default value of every known key
func SetDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", "http://localhost:5173")

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("upload.max_size", 25)
	v.SetDefault("video.min_duration", 5.0)
	v.SetDefault("video.max_duration", 25.0)

	v.SetDefault("trim.allow_zero_start", false)
	v.SetDefault("trim.lock_records", true)

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.key_prefix", "videos")
	v.SetDefault("storage.signed_url_expiration", 60)
	v.SetDefault("storage.timeout", 5*time.Minute)
	v.SetDefault("storage.cleanup_orphans", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffprobe.path", "ffprobe")
	v.SetDefault("ffmpeg.timeout", 2*time.Minute)
	v.SetDefault("ffmpeg.workers", 4)

	v.SetDefault("staging.dir", os.TempDir())
	v.SetDefault("staging.sweep_schedule", "@every 1h")
	v.SetDefault("staging.max_age", 6*time.Hour)

	v.SetDefault("cache.list_ttl", 0)
}

// Validate returns an error if something is critically wrong and the
// application can't run because of that
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetFloat64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	minDur, maxDur := v.GetFloat64("video.min_duration"), v.GetFloat64("video.max_duration")
	if minDur < 0 {
		return errors.New("video.min_duration can't be negative")
	}
	if minDur > maxDur {
		return errors.New("video.min_duration can't be bigger than video.max_duration")
	}

	if v.GetString("storage.bucket") == "" {
		return errors.New("storage.bucket can't be empty")
	}

	if v.GetInt("storage.signed_url_expiration") <= 0 {
		return errors.New("storage.signed_url_expiration must be bigger than 0")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetInt("ffmpeg.workers") <= 0 {
		return errors.New("ffmpeg.workers must be bigger than 0")
	}

	return nil
}
