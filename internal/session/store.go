// internal/session/store.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoGame is returned when no current game has been remembered.
var ErrNoGame = errors.New("no current game")

// Store remembers which game the CLI is playing between invocations.
type Store interface {
	Current(ctx context.Context) (string, error)
	SetCurrent(ctx context.Context, gameID string) error
	Clear(ctx context.Context) error
}

// CurrentGameKey is the Redis key holding the current game ID.
const CurrentGameKey = "minesweeper:current_game"

// RedisStore keeps the current game ID in Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // 0 means the key never expires
}

// NewRedisStore connects to addr and pings it.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisStore{client: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Current(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, CurrentGameKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoGame
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current game: %w", err)
	}
	return id, nil
}

// SetCurrent stores gameID and restarts the TTL.
func (s *RedisStore) SetCurrent(ctx context.Context, gameID string) error {
	if err := s.client.Set(ctx, CurrentGameKey, gameID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store current game %s: %w", gameID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, CurrentGameKey).Err(); err != nil {
		return fmt.Errorf("failed to clear current game: %w", err)
	}
	return nil
}
