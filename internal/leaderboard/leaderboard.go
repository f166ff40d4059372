package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one row of the season leaderboard. Position is 1-based.
type Entry struct {
	UserID   string `json:"user_id"`
	Points   int    `json:"points"`
	Position int    `json:"position"`
}

// Board maintains per-season point standings. It is a rebuildable cache over
// the progress store, not a source of truth.
type Board interface {
	Record(ctx context.Context, seasonID, userID string, delta int) error
	Top(ctx context.Context, seasonID string, limit int) ([]Entry, error)
	Position(ctx context.Context, seasonID, userID string) (*Entry, error)
}

// Connect opens a Redis client and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type redisBoard struct {
	rdb *redis.Client
}

// NewRedisBoard returns a Board backed by a Redis sorted set per season.
func NewRedisBoard(rdb *redis.Client) Board {
	return &redisBoard{rdb: rdb}
}

func boardKey(seasonID string) string {
	return "leaderboard:" + seasonID
}

func (b *redisBoard) Record(ctx context.Context, seasonID, userID string, delta int) error {
	return b.rdb.ZIncrBy(ctx, boardKey(seasonID), float64(delta), userID).Err()
}

func (b *redisBoard) Top(ctx context.Context, seasonID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := b.rdb.ZRevRangeWithScores(ctx, boardKey(seasonID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		userID, _ := row.Member.(string)
		entries = append(entries, Entry{
			UserID:   userID,
			Points:   int(row.Score),
			Position: i + 1,
		})
	}
	return entries, nil
}

func (b *redisBoard) Position(ctx context.Context, seasonID, userID string) (*Entry, error) {
	rank, err := b.rdb.ZRevRank(ctx, boardKey(seasonID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	score, err := b.rdb.ZScore(ctx, boardKey(seasonID), userID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	return &Entry{
		UserID:   userID,
		Points:   int(score),
		Position: int(rank) + 1,
	}, nil
}
