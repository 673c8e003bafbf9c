// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fleet forwards confirmed crash events to a Redis stream so a
// fleet-management backend can pick them up, independent of the journal's
// local on-disk record. Publish failures are retried with exponential
// backoff and wrapped in a circuit breaker so a stalled Redis instance
// cannot back-pressure the detector's cooperative tick loop.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/crashwatch/crashwatch/internal/resilience"
	"github.com/crashwatch/crashwatch/internal/xlog"
)

// Config configures the Redis stream publisher.
type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// RedisClient is the subset of *redis.Client the publisher needs, so
// tests can substitute a miniredis-backed client without depending on a
// live Redis instance.
type RedisClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Publisher publishes confirmed crash events to a Redis stream.
type Publisher struct {
	client  RedisClient
	stream  string
	breaker *resilience.CircuitBreaker
}

// NewPublisher dials Redis and verifies connectivity.
func NewPublisher(cfg Config) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fleet: redis connection failed: %w", err)
	}

	return newPublisherWithClient(client, cfg.Stream), nil
}

func newPublisherWithClient(client RedisClient, stream string) *Publisher {
	logger := xlog.WithComponent("fleet")
	return &Publisher{
		client: client,
		stream: stream,
		breaker: resilience.New("fleet-redis", 5, 30*time.Second, resilience.WithTripHook(func(name, reason string) {
			logger.Warn().Str("breaker", name).Str("reason", reason).Msg("fleet publisher circuit breaker tripped")
		})),
	}
}

// Publish forwards a confirmed crash event. It is best-effort: failures
// are logged, not returned, since a forwarding hiccup must never block
// the ingestion path.
func (p *Publisher) Publish(ctx context.Context, crash detector.CrashResult) {
	logger := xlog.WithContext(ctx, xlog.WithComponent("fleet"))

	payload, err := json.Marshal(crash)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal crash event")
		return
	}

	op := func() (struct{}, error) {
		err := p.breaker.Call(func() error {
			return p.client.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream,
				Values: map[string]any{"payload": payload},
			}).Err()
		})
		return struct{}{}, err
	}

	_, err = backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		logger.Error().Err(err).Str("stream", p.stream).Msg("failed to publish crash event after retries")
	}
}

// Close closes the underlying Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
