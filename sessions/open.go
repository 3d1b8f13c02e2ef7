package sessions

import (
	"context"
	"fmt"

	"github.com/jrsteele09/ums-portal/internal/config"
	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/redis/go-redis/v9"
)

// OpenStore builds the store selected by SESSION_STORE. The returned close
// function releases the underlying connection.
func OpenStore(ctx context.Context, cfg config.SessionConfig) (Store, func() error, error) {
	switch cfg.GetSessionStore() {
	case config.StoreMemory:
		return NewInMemoryStore(), func() error { return nil }, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddress()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, apperrors.Wrapf(err, "failed to connect to redis at %s", cfg.GetRedisAddress())
		}
		return NewRedisStore(client), client.Close, nil

	case config.StoreSQLite:
		db, err := OpenSQLite(cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		store, err := NewSQLStore(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStore, cfg.GetSessionStore())
	}
}
