// Package config loads service settings from the environment.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/stevemurr/transfer-store/store"
)

type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string

	// Env is "production" or anything else; it selects the log level.
	Env     string
	LogFile string

	Store store.Options
}

// Load reads a .env file when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	return Config{
		Host:           env("HOST", "0.0.0.0"),
		Port:           env("PORT", "3003"),
		AllowedOrigins: splitList(env("ALLOWED_ORIGINS", "*")),
		Env:            env("APP_ENV", "development"),
		LogFile:        env("LOG_FILE", ""),
		Store: store.Options{
			Backend:       env("STORE_BACKEND", "json"),
			FilePath:      env("FILE_STORE_PATH", "./filestore/transfers.json"),
			SqlitePath:    env("SQLITE_PATH", "./filestore/transfers.db"),
			RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
			RedisPassword: env("REDIS_PASSWORD", ""),
			RedisKey:      env("REDIS_KEY", "transfers"),
		},
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
