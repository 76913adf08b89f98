// Package config loads service configuration from an optional YAML file
// overlaid by environment variables. Env always wins so container deploys can
// override a baked-in file.
package config

import (
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

type Config struct {
	Port               string  `yaml:"port"`
	DatabaseURL        string  `yaml:"databaseUrl"`
	RedisURL           string  `yaml:"redisUrl"`
	MigrateDir         string  `yaml:"migrateDir"`
	AuthMode           string  `yaml:"authMode"`
	AuthHMACSecret     string  `yaml:"authHmacSecret"`
	RateRPS            float64 `yaml:"rateRps"`
	RateBurst          int     `yaml:"rateBurst"`
	WebhookMaxAttempts int     `yaml:"webhookMaxAttempts"`
	DefaultStrategy    string  `yaml:"defaultStrategy"`
	MaxExhaustivePool  int     `yaml:"maxExhaustivePool"`
}

// Load reads CONFIG_FILE (if set) and then applies env overrides.
func Load() (Config, error) {
	cfg := Config{
		Port:               "8080",
		MigrateDir:         "db/migrations",
		AuthMode:           "dev",
		RateRPS:            0, // 0 disables rate limiting
		RateBurst:          20,
		WebhookMaxAttempts: 10,
		DefaultStrategy:    "exhaustive",
		MaxExhaustivePool:  30,
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	overlayEnv(&cfg)
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	setStr(&cfg.Port, "PORT")
	setStr(&cfg.DatabaseURL, "DATABASE_URL")
	setStr(&cfg.RedisURL, "REDIS_URL")
	setStr(&cfg.MigrateDir, "MIGRATE_DIR")
	setStr(&cfg.AuthMode, "AUTH_MODE")
	setStr(&cfg.AuthHMACSecret, "AUTH_HMAC_SECRET")
	setStr(&cfg.DefaultStrategy, "DEFAULT_STRATEGY")
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateRPS = f
		}
	}
	setInt(&cfg.RateBurst, "RATE_BURST")
	setInt(&cfg.WebhookMaxAttempts, "WEBHOOK_MAX_ATTEMPTS")
	setInt(&cfg.MaxExhaustivePool, "MAX_EXHAUSTIVE_POOL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
