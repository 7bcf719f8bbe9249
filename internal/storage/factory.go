package storage

import (
	"context"
	"fmt"

	"grandprix-booking/config"
	"grandprix-booking/utils"
)

// Backend names a snapshot store implementation.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendSQL   Backend = "sql"
)

// SupportedBackends returns the backends NewStore knows how to build.
func SupportedBackends() []Backend {
	return []Backend{BackendFile, BackendRedis, BackendSQL}
}

// NewStore builds the store selected by cfg.StoreBackend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch Backend(cfg.StoreBackend) {
	case BackendFile, "":
		return NewFileStore(cfg.DataDir)

	case BackendRedis:
		client, err := utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix), nil

	case BackendSQL:
		return OpenSQLStore(ctx, cfg.SQLDriver, cfg.SQLDSN)

	default:
		return nil, fmt.Errorf("%w: %q, supported: %v", ErrUnknownBackend, cfg.StoreBackend, SupportedBackends())
	}
}
