package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	// DatabaseURL selects the store: postgres:// DSNs use the pgx driver,
	// anything else is treated as a SQLite path.
	DatabaseURL string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string

	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string

	PusherAppID   string
	PusherKey     string
	PusherSecret  string
	PusherCluster string

	CORSOrigins []string
	Debug       bool
}

func Load() (*Config, error) {
	// Best-effort; env vars win over .env values.
	_ = godotenv.Load()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "DevCampfire API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DatabaseURL: getEnv("DATABASE_URL", "devcampfire.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),

		GithubClientID:     os.Getenv("GITHUB_ID"),
		GithubClientSecret: os.Getenv("GITHUB_SECRET"),
		GithubRedirectURL:  getEnv("GITHUB_REDIRECT_URL", "http://localhost:8000/api/auth/github/callback"),

		PusherAppID:   os.Getenv("PUSHER_APP_ID"),
		PusherKey:     os.Getenv("PUSHER_KEY"),
		PusherSecret:  os.Getenv("PUSHER_SECRET"),
		PusherCluster: getEnv("PUSHER_CLUSTER", "eu"),

		Debug: getEnvAsBool("DEBUG", true),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UsePostgres reports whether DatabaseURL points at a PostgreSQL server.
func (c *Config) UsePostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// UsePusher reports whether Pusher Channels credentials are configured.
func (c *Config) UsePusher() bool {
	return c.PusherAppID != "" && c.PusherKey != "" && c.PusherSecret != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
