// Package config loads runtime configuration from SMARTLOCK_-prefixed
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// TimeOfDay is a wall-clock time without a date, stored as seconds since
// midnight.  It decodes from "HH:MM" or "HH:MM:SS".
type TimeOfDay int

// Decode implements envconfig.Decoder.
func (t *TimeOfDay) Decode(value string) error {
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		parsed, err = time.Parse("15:04", value)
	}
	if err != nil {
		return fmt.Errorf("invalid time of day %q (want HH:MM or HH:MM:SS)", value)
	}
	*t = TimeOfDay(parsed.Hour()*3600 + parsed.Minute()*60 + parsed.Second())
	return nil
}

func (t TimeOfDay) Seconds() int { return int(t) }

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	// HTTPAddr is the listen address for the HTTP API.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// Env selects dev conveniences such as user seeding ("dev" | "prod").
	Env string `envconfig:"ENV" default:"dev"`
	// LogLevel controls the zerolog level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DBPath is the SQLite database file.
	DBPath string `envconfig:"DB_PATH" default:"./data/smartlock.db"`

	// WorkdayStart/WorkdayEnd bound the allowed access window.  Both
	// boundary instants are inside the window; an attempt strictly before
	// the start or strictly after the end is flagged as overtime.
	WorkdayStart TimeOfDay `envconfig:"WORKDAY_START" default:"09:00"`
	WorkdayEnd   TimeOfDay `envconfig:"WORKDAY_END" default:"18:00"`

	// MaxHourlyAttempts/MaxDailyAttempts are rolling-window rate limits.
	// An attempt is excessive when the count of prior attempts in the
	// window has already reached the limit.
	MaxHourlyAttempts int `envconfig:"MAX_HOURLY_ATTEMPTS" default:"5"`
	MaxDailyAttempts  int `envconfig:"MAX_DAILY_ATTEMPTS" default:"20"`

	// SerializePerUser takes a per-user lock across the count-read and the
	// audit append, closing the race where two concurrent requests for the
	// same user both observe the pre-increment count.
	SerializePerUser bool `envconfig:"SERIALIZE_PER_USER" default:"false"`

	// AdminWebhookURL receives security alerts as JSON POSTs.  Empty
	// disables alert delivery.
	AdminWebhookURL string `envconfig:"ADMIN_WEBHOOK_URL" default:""`

	// AttemptRetentionDays is how many days of audit history to keep.
	// 0 means keep everything (pruner will not start).
	AttemptRetentionDays int `envconfig:"ATTEMPT_RETENTION_DAYS" default:"0"`
	// PruneIntervalHours is how often the pruner runs.  Defaults to 6.
	PruneIntervalHours int `envconfig:"PRUNE_INTERVAL_HOURS" default:"6"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("smartlock", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	return cfg, nil
}

// MustLoad is Load or exit.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
