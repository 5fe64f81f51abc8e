package store

import (
	"context"
	"fmt"

	"biolink/internal/platform/config"
)

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "bolt":
		return NewBoltStore(cfg.Bolt.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite)
	case "redis":
		return NewRedisStore(cfg.Redis)
	case "dynamodb":
		return NewDynamoStore(ctx, cfg.DynamoDB)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
