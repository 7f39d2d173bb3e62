package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FINSIM_DATABASE_DSN.
const EnvPrefix = "FINSIM"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string  `yaml:"addr" envconfig:"ADDR"`
		Mode           string  `yaml:"mode" envconfig:"MODE"`
		RateLimit      float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
		RateBurst      int     `yaml:"rate_burst" envconfig:"RATE_BURST"`
		JWTSecret      string  `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
		LogAllRequests bool    `yaml:"log_all_requests" envconfig:"LOG_ALL_REQUESTS"`
	} `yaml:"server" envconfig:"SERVER"`
	Database struct {
		Driver          string        `yaml:"driver" envconfig:"DRIVER"`
		DSN             string        `yaml:"dsn" envconfig:"DSN"`
		MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
		MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
		LogLevel        string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	} `yaml:"database" envconfig:"DATABASE"`
	Schedule struct {
		Timezone    string `yaml:"timezone" envconfig:"TIMEZONE"`
		DailyCron   string `yaml:"daily_cron" envconfig:"DAILY_CRON"`
		HourlyCron  string `yaml:"hourly_cron" envconfig:"HOURLY_CRON"`
		WeeklyCron  string `yaml:"weekly_cron" envconfig:"WEEKLY_CRON"`
		MonthlyCron string `yaml:"monthly_cron" envconfig:"MONTHLY_CRON"`
		CleanupCron string `yaml:"cleanup_cron" envconfig:"CLEANUP_CRON"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Simulation struct {
		StateFile     string `yaml:"state_file" envconfig:"STATE_FILE"`
		Currency      string `yaml:"currency" envconfig:"CURRENCY"`
		RetentionDays int    `yaml:"retention_days" envconfig:"RETENTION_DAYS"`
		BackfillDays  int    `yaml:"backfill_days" envconfig:"BACKFILL_DAYS"`
		Seed          uint64 `yaml:"seed" envconfig:"SEED"`
	} `yaml:"simulation" envconfig:"SIMULATION"`
	Lock struct {
		Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
		Prefix  string        `yaml:"prefix" envconfig:"PREFIX"`
		TTL     time.Duration `yaml:"ttl" envconfig:"TTL"`
		Redis   struct {
			Addr     string `yaml:"addr" envconfig:"ADDR"`
			Password string `yaml:"password" envconfig:"PASSWORD"`
			DB       int    `yaml:"db" envconfig:"DB"`
			PoolSize int    `yaml:"pool_size" envconfig:"POOL_SIZE"`
		} `yaml:"redis" envconfig:"REDIS"`
	} `yaml:"lock" envconfig:"LOCK"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Log struct {
		Level string `yaml:"level" envconfig:"LEVEL"`
		File  string `yaml:"file" envconfig:"FILE"`
	} `yaml:"log" envconfig:"LOG"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.RateBurst == 0 && c.Server.RateLimit > 0 {
		c.Server.RateBurst = int(c.Server.RateLimit) * 2
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/finsim.db"
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = "silent"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Europe/Rome"
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 1 0 * * *"
	}
	if c.Schedule.HourlyCron == "" {
		c.Schedule.HourlyCron = "0 0 9-17 * * 1-5"
	}
	if c.Schedule.WeeklyCron == "" {
		c.Schedule.WeeklyCron = "0 0 23 * * 0"
	}
	if c.Schedule.MonthlyCron == "" {
		c.Schedule.MonthlyCron = "0 5 0 1 * *"
	}
	if c.Schedule.CleanupCron == "" {
		c.Schedule.CleanupCron = "0 0 2 1 * *"
	}
	if c.Simulation.StateFile == "" {
		c.Simulation.StateFile = "data/simulation_state.json"
	}
	if c.Simulation.Currency == "" {
		c.Simulation.Currency = "EUR"
	}
	if c.Simulation.RetentionDays == 0 {
		c.Simulation.RetentionDays = 365
	}
	if c.Simulation.BackfillDays == 0 {
		c.Simulation.BackfillDays = 7
	}
	if c.Lock.Prefix == "" {
		c.Lock.Prefix = "finsim:"
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	for name, spec := range map[string]string{
		"daily_cron":   c.Schedule.DailyCron,
		"hourly_cron":  c.Schedule.HourlyCron,
		"weekly_cron":  c.Schedule.WeeklyCron,
		"monthly_cron": c.Schedule.MonthlyCron,
		"cleanup_cron": c.Schedule.CleanupCron,
	} {
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("schedule.%s: %w", name, err)
		}
	}
	if c.Simulation.RetentionDays <= 0 {
		return fmt.Errorf("simulation.retention_days must be positive")
	}
	if c.Simulation.BackfillDays < 0 {
		return fmt.Errorf("simulation.backfill_days must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Lock.Enabled && c.Lock.Redis.Addr == "" {
		return fmt.Errorf("lock.redis.addr is required when lock.enabled is true")
	}
	return nil
}

// Location returns the scheduler timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
