// Package config loads platform configuration from the environment, with
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the whole platform configuration.
type Config struct {
	App struct {
		Port        string
		ShippingFee int64
	}
	Storage struct {
		// Driver selects the registry backend: "postgres" or "memory".
		Driver string
	}
	Postgres struct {
		Host           string
		Port           string
		User           string
		Password       string
		DBName         string
		SSLMode        string
		MigrationsPath string
	}
	Redis struct {
		// Addr empty means carts are kept in memory.
		Addr     string
		Password string
		DB       int
	}
	Plans map[string]int
	AI    struct {
		Endpoint string
		APIKey   string
	}
	Media struct {
		Endpoint string
		Preset   string
	}
}

// Load reads configuration, loading the .env at path first when it exists.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")

	fee, err := strconv.ParseInt(getEnv("SHIPPING_FEE", "200"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SHIPPING_FEE: %w", err)
	}
	cfg.App.ShippingFee = fee

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", "memory")
	if cfg.Storage.Driver != "memory" && cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (want memory or postgres)", cfg.Storage.Driver)
	}

	cfg.Postgres.Host = getEnv("DB_HOST", "localhost")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")
	if cfg.Storage.Driver == "postgres" {
		for name, value := range map[string]string{
			"DB_USER": cfg.Postgres.User,
			"DB_NAME": cfg.Postgres.DBName,
		} {
			if value == "" {
				return nil, fmt.Errorf("%s is required when STORAGE_DRIVER=postgres", name)
			}
		}
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	plans, err := parsePlans(getEnv("PLAN_LIMITS", "Free:5,Premium:20"))
	if err != nil {
		return nil, err
	}
	cfg.Plans = plans

	cfg.AI.Endpoint = os.Getenv("AI_ENDPOINT")
	cfg.AI.APIKey = os.Getenv("AI_API_KEY")
	cfg.Media.Endpoint = os.Getenv("MEDIA_UPLOAD_ENDPOINT")
	cfg.Media.Preset = getEnv("MEDIA_UPLOAD_PRESET", "swiftstore")

	return cfg, nil
}

// parsePlans parses "Free:5,Premium:20" into the plan-limit table.
func parsePlans(raw string) (map[string]int, error) {
	plans := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, limitStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid PLAN_LIMITS entry %q", pair)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(limitStr))
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("invalid PLAN_LIMITS ceiling in %q", pair)
		}
		plans[strings.TrimSpace(name)] = limit
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("PLAN_LIMITS must define at least one plan")
	}
	return plans, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
