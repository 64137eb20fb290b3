package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	FilePath   string
	SqlitePath string

	RedisAddr     string
	RedisPassword string
	RedisKey      string
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"json"   - one JSON file at FilePath (default)
//	"sqlite" - SQLite database at SqlitePath
//	"redis"  - one hash at RedisKey on RedisAddr
//	"memory" - In-memory (ephemeral, for testing)
func New(opts Options) (Store, error) {
	switch opts.Backend {
	case "json", "":
		return NewJSONFileStore(opts.FilePath)
	case "sqlite":
		return NewSqliteStore(opts.SqlitePath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, internal("open", fmt.Errorf("redis %s: %w", opts.RedisAddr, err))
		}
		return NewRedisStore(client, opts.RedisKey), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, sqlite, redis, memory)", opts.Backend)
	}
}
