package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// Client wraps Redis operations for session snapshots and the leaderboard.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

const leaderboardKey = "leaderboard"

// SessionSnapshot is the persisted form of an active tournament session,
// enough to rebuild it after a process restart: the starting pool and seed
// replay the bracket, the position fast-forwards it.
type SessionSnapshot struct {
	ID        string             `json:"id"`
	Pool      []domain.NameEntry `json:"pool"`
	Rounds    int                `json:"rounds"`
	Seed      int64              `json:"seed"`
	Position  int                `json:"position"`
	Ratings   domain.RatingMap   `json:"ratings"`
	History   []domain.Vote      `json:"history"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SaveSession stores a session snapshot with a TTL.
func (c *Client) SaveSession(ctx context.Context, snap SessionSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.rdb.Set(ctx, sessionKey(snap.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves a session snapshot; found is false when it expired
// or never existed.
func (c *Client) LoadSession(ctx context.Context, id string) (SessionSnapshot, bool, error) {
	var snap SessionSnapshot

	data, err := c.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("failed to load session: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false, fmt.Errorf("invalid session payload: %w", err)
	}
	return snap, true, nil
}

// DeleteSession removes a session snapshot.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, sessionKey(id)).Err()
}

// UpdateLeaderboard writes entry ratings into the leaderboard sorted set.
func (c *Client) UpdateLeaderboard(ctx context.Context, ratings domain.RatingMap) error {
	members := make([]redis.Z, 0, len(ratings))
	for id, er := range ratings {
		members = append(members, redis.Z{Score: er.Rating, Member: id})
	}
	if len(members) == 0 {
		return nil
	}
	if err := c.rdb.ZAdd(ctx, leaderboardKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// TopRated returns the highest-scored entry IDs from the leaderboard.
func (c *Client) TopRated(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := c.rdb.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return ids, nil
}
