package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config carries the redis connection settings read from the environment.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// NewRedisClient opens and pings a connection. The pool is sized for a
// single-user tracker: the scope-listing cache and the rate limiter are
// the only callers.
func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   "habit-grid",
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     5,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.addr(), err)
	}

	return rdb, nil
}
