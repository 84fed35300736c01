package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "percentbot:session:"

type redisManager struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption customises the Redis-backed Manager.
type RedisOption func(*redisManager)

// WithTTL expires abandoned conversations after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(m *redisManager) { m.ttl = ttl }
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(m *redisManager) { m.prefix = prefix }
}

// NewRedisManager constructs a Manager backed by Redis so conversation state
// survives restarts and can be shared between replicas.
func NewRedisManager(addr, password string, db int, opts ...RedisOption) Manager {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisManagerFromClient(client, opts...)
}

// NewRedisManagerFromClient wraps an existing client, mainly for tests.
func NewRedisManagerFromClient(client *backend.Client, opts ...RedisOption) Manager {
	m := &redisManager{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *redisManager) key(userID int64) string {
	return m.prefix + strconv.FormatInt(userID, 10)
}

// State returns the stored state or StateIdle when the key is absent.
func (m *redisManager) State(ctx context.Context, userID int64) (State, error) {
	val, err := m.client.Get(ctx, m.key(userID)).Result()
	if errors.Is(err, backend.Nil) {
		return StateIdle, nil
	}
	if err != nil {
		return StateIdle, fmt.Errorf("session get: %w", err)
	}
	return State(val), nil
}

// Set transitions the user to the given state.
func (m *redisManager) Set(ctx context.Context, userID int64, st State) error {
	if st == StateIdle {
		return m.Clear(ctx, userID)
	}
	if err := m.client.Set(ctx, m.key(userID), string(st), m.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Clear resets the user to StateIdle.
func (m *redisManager) Clear(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, m.key(userID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
