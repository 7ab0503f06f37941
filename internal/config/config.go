package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/medtrack/scheduler-api/internal/store/postgrest"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Store     postgrest.Config `mapstructure:"store"`
	JWT       JWTConfig        `mapstructure:"jwt"`
	Reminder  ReminderConfig   `mapstructure:"reminder"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type ReminderConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Interval   time.Duration `mapstructure:"interval"`
	Enabled    bool          `mapstructure:"enabled"`
}

type SchedulerConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("scheduler")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("reminder.interval", 5*time.Minute)
	viper.SetDefault("reminder.enabled", true)
	viper.SetDefault("scheduler.session_ttl", 30*time.Minute)
	viper.SetDefault("scheduler.summary_ttl", time.Minute)
	viper.SetDefault("rate_limit.rps", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
