package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set sets a value in Redis with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// GetResourceID retrieves the cached internal id for an external resource code
func (c *Client) GetResourceID(ctx context.Context, kind, code string) (int64, error) {
	key := fmt.Sprintf("resource:%s:code:%s", kind, code)
	val, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// SetResourceID caches the internal id for an external resource code
func (c *Client) SetResourceID(ctx context.Context, kind, code string, id int64, expiration time.Duration) error {
	key := fmt.Sprintf("resource:%s:code:%s", kind, code)
	return c.Set(ctx, key, strconv.FormatInt(id, 10), expiration)
}

// InvalidateResource removes the cached id mapping for a resource code
func (c *Client) InvalidateResource(ctx context.Context, kind, code string) error {
	key := fmt.Sprintf("resource:%s:code:%s", kind, code)
	return c.Delete(ctx, key)
}

// GetUser retrieves a cached principal row
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	key := fmt.Sprintf("user:%s", userID)
	val, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return &user, nil
}

// SetUser caches a principal row for auth middleware lookups
func (c *Client) SetUser(ctx context.Context, user *models.User, expiration time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	key := fmt.Sprintf("user:%s", user.ID.String())
	return c.Set(ctx, key, data, expiration)
}

// InvalidateUser removes the cached principal row. Called whenever a user's
// role, override list, grants or active flag change.
func (c *Client) InvalidateUser(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s", userID)
	return c.Delete(ctx, key)
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
