// Package config loads process configuration from the environment via
// viper, mirroring the teacher's flag+env resolution but binding the
// AdCP-specific variables from SPEC_FULL §6.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved process configuration.
type Config struct {
	Host string
	Port int

	GeminiAPIKey string
	DryRun       bool
	Env          string

	TaskRetention time.Duration
	DatabaseURL   string
	RedisAddr     string
	WorkerPoolSize int
}

// Load reads configuration from the environment, applying the same
// defaults the teacher's CLI falls back to when a variable is unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("A2A_HOST", "0.0.0.0")
	v.SetDefault("A2A_PORT", 8091)
	v.SetDefault("ADCP_DRY_RUN", false)
	v.SetDefault("ADCP_ENV", "development")
	v.SetDefault("ADCP_TASK_RETENTION", "1h")
	v.SetDefault("ADCP_WORKER_POOL_SIZE", 8)

	retention, err := time.ParseDuration(v.GetString("ADCP_TASK_RETENTION"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid ADCP_TASK_RETENTION: %w", err)
	}

	cfg := &Config{
		Host:           v.GetString("A2A_HOST"),
		Port:           v.GetInt("A2A_PORT"),
		GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
		DryRun:         v.GetBool("ADCP_DRY_RUN"),
		Env:            v.GetString("ADCP_ENV"),
		TaskRetention:  retention,
		DatabaseURL:    v.GetString("ADCP_DATABASE_URL"),
		RedisAddr:      v.GetString("ADCP_REDIS_ADDR"),
		WorkerPoolSize: v.GetInt("ADCP_WORKER_POOL_SIZE"),
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
