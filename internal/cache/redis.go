// Package cache provides a Redis-backed playback position store shared by
// every device of a user.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/state"
)

const pingTimeout = 5 * time.Second

// Compile-time check.
var _ playback.PositionStore = (*PositionStore)(nil)

// client is the subset of *redis.Client the store uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string        // defaults to state.PositionKey
	TTL      time.Duration // 0 keeps the record forever
}

// PositionStore keeps the playback position record under one key.
type PositionStore struct {
	rdb client
	key string
	ttl time.Duration
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, opts Options) (*PositionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return newPositionStore(rdb, opts), nil
}

func newPositionStore(rdb client, opts Options) *PositionStore {
	key := opts.Key
	if key == "" {
		key = state.PositionKey
	}
	return &PositionStore{rdb: rdb, key: key, ttl: opts.TTL}
}

// LoadPosition returns the stored record.
func (s *PositionStore) LoadPosition(ctx context.Context) (playback.SavedPosition, bool, error) {
	v, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return playback.SavedPosition{}, false, nil
	}
	if err != nil {
		return playback.SavedPosition{}, false, fmt.Errorf("reading position: %w", err)
	}
	p, err := state.DecodePosition(v)
	if err != nil {
		return playback.SavedPosition{}, false, err
	}
	return p, true, nil
}

// SavePosition overwrites the stored record.
func (s *PositionStore) SavePosition(ctx context.Context, p playback.SavedPosition) error {
	v, err := state.EncodePosition(p)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, v, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing position: %w", err)
	}
	return nil
}

// Close closes the connection.
func (s *PositionStore) Close() error {
	return s.rdb.Close()
}
