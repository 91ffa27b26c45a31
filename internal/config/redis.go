package config

// This file defines the Redis client constructor used by the rate limiter.
// The backend is selected by RATELIMIT_STORAGE_URI: "memory://" (or empty)
// keeps limiter state in process, any redis:// or rediss:// URI shares it
// between instances.  If the Redis server cannot be reached at start-up the
// constructor returns nil and the caller falls back to the memory store.

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient parses the storage URI and pings the server with a short
// timeout.  A nil client means "use the in-memory limiter".
func NewRedisClient(storageURI string) *redis.Client {
	if storageURI == "" || strings.HasPrefix(storageURI, "memory://") {
		return nil
	}
	opts, err := redis.ParseURL(storageURI)
	if err != nil {
		logrus.WithError(err).Warn("invalid RATELIMIT_STORAGE_URI, falling back to memory limiter")
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", opts.Addr).Warn("redis unreachable, falling back to memory limiter")
		_ = client.Close()
		return nil
	}
	return client
}
