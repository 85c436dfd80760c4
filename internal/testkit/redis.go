package testkit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// The Redis rate store and the resolver cache live in separate logical databases of
// one instance, so either can be flushed without touching the other.
const (
	StoreDB = 0
	CacheDB = 1
)

// RedisModule is a Redis instance serving both the rate store and the resolver cache.
type RedisModule struct {
	container testcontainers.Container
	addr      string
}

// Addr returns the host:port of the instance.
func (r *RedisModule) Addr() string { return r.addr }

// Client opens a client on logical database db. The caller closes it.
func (r *RedisModule) Client(db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: r.addr, DB: db})
}

// Terminate stops the container. It is a no-op for an external instance.
func (r *RedisModule) Terminate(ctx context.Context) error {
	if r.container == nil {
		return nil
	}
	return r.container.Terminate(ctx)
}

// StartRedis starts a Redis container, or uses cfg.RedisAddr when set, and checks that
// the store and cache databases both answer.
func StartRedis(ctx context.Context, cfg *Config) (*RedisModule, error) {
	if cfg.RedisAddr != "" {
		mod := &RedisModule{addr: cfg.RedisAddr}
		if err := mod.ping(ctx); err != nil {
			return nil, err
		}
		return mod, nil
	}

	ctr, err := tcredis.Run(ctx, cfg.RedisImage)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get redis connection string: %w", err)
	}

	// go-redis Options take host:port, not a redis:// URL.
	u, err := url.Parse(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
	}

	mod := &RedisModule{container: ctr, addr: u.Host}
	if err := mod.ping(ctx); err != nil {
		_ = ctr.Terminate(ctx)
		return nil, err
	}
	return mod, nil
}

func (r *RedisModule) ping(ctx context.Context) error {
	for _, db := range []int{StoreDB, CacheDB} {
		c := r.Client(db)
		err := c.Ping(ctx).Err()
		_ = c.Close()
		if err != nil {
			return fmt.Errorf("ping redis db %d at %s: %w", db, r.addr, err)
		}
	}
	return nil
}
