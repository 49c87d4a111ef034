// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

It backs three concerns: the revoked-token list, the subscription status cache,
and the stream that wakes the generation worker.

Revocations only need to live as long as the token they block. The status
cache is rebuilt from PostgreSQL on a miss, and wake-ups lost with the stream
are covered by the worker's poll loop.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
	poolSize     = 10
)

// Option adjusts the client for one process role.
type Option func(*redis.Options)

// WithClientName labels the connections in CLIENT LIST.
func WithClientName(name string) Option {
	return func(options *redis.Options) {
		options.ClientName = name
	}
}

// WithPoolSize overrides the connection pool size. The worker keeps one
// connection parked in a blocking stream read, so it needs a few extra.
func WithPoolSize(size int) Option {
	return func(options *redis.Options) {
		options.PoolSize = size
	}
}

/*
NewClient parses a Redis URL and returns a ready-to-use client.

Description: Context deadlines are honoured by every command, so a request
timeout also bounds its cache reads. Blocking stream reads extend their own
read deadline inside go-redis.

Parameters:
  - context: Context for the initial ping.
  - redisURL: redis:// or rediss:// URL.
  - logger: Structured logger for connection events.
  - overrides: Per-process options applied after the defaults.
*/
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger, overrides ...Option) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = 2
	options.MaxIdleConns = 5
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout
	options.ContextTimeoutEnabled = true
	for _, override := range overrides {
		override(options)
	}

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.String("client_name", options.ClientName),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
