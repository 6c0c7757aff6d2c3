package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Andessonreis/corre-aqui-dash/internal/config"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("cache: key not found")

// ChannelImageUploaded carries ImageUploadedEvent payloads to the image worker
const ChannelImageUploaded = "image:uploaded"

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client and pings it
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value. A missing key yields ErrMiss.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set sets a value with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// Publish publishes a message to a channel
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.Client.Publish(ctx, channel, message).Err()
}

// Acquire takes a short-lived exclusive lock. ok is false when someone else holds it.
// The returned release func is safe to call once the lock expired.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), ok bool, err error) {
	token := uuid.NewString()

	ok, err = c.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func(ctx context.Context) {
		_ = releaseScript.Run(ctx, c.Client, []string{key}, token).Err()
	}
	return release, true, nil
}

// StoreIDKey caches the store of an owner's user id
func StoreIDKey(userID uuid.UUID) string {
	return fmt.Sprintf("store:user:%s", userID)
}

// WizardKey holds the onboarding wizard state of a user
func WizardKey(userID uuid.UUID) string {
	return fmt.Sprintf("onboarding:wizard:%s", userID)
}

// SubmitLockKey guards the terminal onboarding write of a user
func SubmitLockKey(userID uuid.UUID) string {
	return fmt.Sprintf("onboarding:submit:%s", userID)
}

// PostalCodeKey caches a postal code lookup
func PostalCodeKey(cep string) string {
	return fmt.Sprintf("postal:%s", cep)
}

// CategoriesKey caches the category list
const CategoriesKey = "categories:all"

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
