package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/miaout11/forum-express-grading/internal/services"
)

// Redis keys of the leaderboard cache. The generation counter is bumped by
// every invalidation so a ranking read before it is never written after it.
const (
	TopUsersKey           = "forum:top_users"
	TopUsersGenerationKey = "forum:top_users:gen"
)

var errStale = errors.New("top users generation changed")

// TopUsers caches the leaderboard in Redis as a JSON document.
type TopUsers struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopUsers builds a leaderboard cache on client. Entries expire after ttl.
func NewTopUsers(client *redis.Client, ttl time.Duration) *TopUsers {
	return &TopUsers{client: client, ttl: ttl}
}

// Get returns the cached leaderboard. The boolean is false on a miss.
func (c *TopUsers) Get(ctx context.Context) ([]services.TopUser, bool, error) {
	data, err := c.client.Get(ctx, TopUsersKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read top users: %w", err)
	}

	var users []services.TopUser
	if err := json.Unmarshal(data, &users); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next Set.
		return nil, false, nil
	}
	return users, true, nil
}

// Generation returns the current invalidation counter.
func (c *TopUsers) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, TopUsersGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read top users generation: %w", err)
	}
	return gen, nil
}

// Set stores the leaderboard if no invalidation happened since generation was
// read. It reports whether the entry was written.
func (c *TopUsers) Set(ctx context.Context, generation int64, users []services.TopUser) (bool, error) {
	payload, err := json.Marshal(users)
	if err != nil {
		return false, fmt.Errorf("failed to encode top users: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, TopUsersGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, TopUsersKey, payload, c.ttl)
			return nil
		})
		return err
	}, TopUsersGenerationKey)
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to write top users: %w", err)
	}
	return true, nil
}

// Invalidate drops the cached leaderboard and bumps the generation.
func (c *TopUsers) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, TopUsersGenerationKey)
		pipe.Del(ctx, TopUsersKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate top users: %w", err)
	}
	return nil
}
