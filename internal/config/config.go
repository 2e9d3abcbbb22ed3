package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	JWTSecret string

	StoreDriver   string
	DBURL         string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint   string
	AllowedOrigins []string
	MaxBodyBytes   int64

	SeedUserEmail    string
	SeedUserPassword string
	SeedUserName     string
}

// Load reads the process environment once. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DBURL:         getEnv("DATABASE_URL", buildDBURL()),
		SQLitePath:    getEnv("SQLITE_PATH", "accounthub.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTelEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:   1 << 20,

		SeedUserEmail:    os.Getenv("SEED_USER_EMAIL"),
		SeedUserPassword: os.Getenv("SEED_USER_PASSWORD"),
		SeedUserName:     getEnv("SEED_USER_NAME", "Admin"),
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" && !c.IsLocal() {
		return errors.New("JWT_SECRET is required")
	}

	return nil
}

// IsLocal is true for dev and test environments.
func (c Config) IsLocal() bool {
	return c.Env == "dev" || c.Env == "test"
}

// SigningSecret returns the token secret, falling back to a fixed value in dev.
func (c Config) SigningSecret() string {
	if c.JWTSecret == "" && c.IsLocal() {
		return "dev-insecure-secret"
	}
	return c.JWTSecret
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "accounthub")
	pass := getEnv("DB_PASSWORD", "accounthub")
	name := getEnv("DB_NAME", "accounthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
