// Package redis keeps a per-game best-score index on Redis sorted sets. The
// index answers the new-high-score predicates behind winner broadcasts and is
// rebuilt from the durable store by the sync worker.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/game-arcade/internal/config"
	"github.com/game-arcade/internal/domain"
)

// Index provides Redis-based best-score tracking.
type Index struct {
	client *redis.Client
	logger *slog.Logger
}

// NewIndex creates a new Redis best-score index.
func NewIndex(cfg *config.RedisConfig, logger *slog.Logger) (*Index, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Index{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (x *Index) Close() error {
	return x.client.Close()
}

// indexKey returns the Redis key for a game's best-score sorted set
func (x *Index) indexKey(t domain.GameType) string {
	return fmt.Sprintf("arcade:best:%s", t)
}

// Submit records value as the user's best if it beats their current best for
// the game's comparison direction. It reports whether the submission is a new
// personal best and whether it beats the previous global best. A first score
// counts as both.
func (x *Index) Submit(ctx context.Context, t domain.GameType, userID string, value float64) (personalBest, globalBest bool, err error) {
	key := x.indexKey(t)
	higherIsBetter := !domain.LowerIsBetter(t)

	// Current global best before this submission lands.
	var top []redis.Z
	if higherIsBetter {
		top, err = x.client.ZRevRangeWithScores(ctx, key, 0, 0).Result()
	} else {
		top, err = x.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	}
	if err != nil {
		return false, false, fmt.Errorf("getting global best: %w", err)
	}
	if len(top) == 0 {
		globalBest = true
	} else if higherIsBetter && value > top[0].Score {
		globalBest = true
	} else if !higherIsBetter && value < top[0].Score {
		globalBest = true
	}

	current, err := x.client.ZScore(ctx, key, userID).Result()
	if err != nil && err != redis.Nil {
		return false, false, fmt.Errorf("getting current best: %w", err)
	}
	if err == redis.Nil {
		personalBest = true
	} else if higherIsBetter && value > current {
		personalBest = true
	} else if !higherIsBetter && value < current {
		personalBest = true
	}

	if personalBest {
		err = x.client.ZAdd(ctx, key, redis.Z{Score: value, Member: userID}).Err()
		if err != nil {
			return false, false, fmt.Errorf("setting best score: %w", err)
		}
	}
	return personalBest, globalBest, nil
}

// Best returns a user's best recorded value for a game, or domain.ErrUserNotFound
// when the user has no indexed score.
func (x *Index) Best(ctx context.Context, t domain.GameType, userID string) (float64, error) {
	value, err := x.client.ZScore(ctx, x.indexKey(t), userID).Result()
	if err == redis.Nil {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("getting best score: %w", err)
	}
	return value, nil
}

// Rebuild replaces a game's index with the given best-per-user values. The
// sync worker calls this on startup and on its interval.
func (x *Index) Rebuild(ctx context.Context, t domain.GameType, best map[string]float64) error {
	key := x.indexKey(t)

	pipe := x.client.Pipeline()
	pipe.Del(ctx, key)
	for userID, value := range best {
		pipe.ZAdd(ctx, key, redis.Z{Score: value, Member: userID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	return nil
}

// Count returns the number of indexed players for a game.
func (x *Index) Count(ctx context.Context, t domain.GameType) (int64, error) {
	count, err := x.client.ZCard(ctx, x.indexKey(t)).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}
