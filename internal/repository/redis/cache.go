package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"frogol/internal/domain"
	"frogol/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Cache provides caching operations using Redis
// This implements the CACHE-ASIDE PATTERN:
// 1. Check cache first
// 2. If miss, get from database
// 3. Store in cache for next time
//
// The cached unit is the assembled public profile (page + active links),
// keyed by slug, because the public page is the hot read path.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// GetProfile retrieves a public profile from cache
// Returns nil if not found (cache miss)
func (c *Cache) GetProfile(ctx context.Context, slug string) (*domain.PublicProfile, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	// Key naming convention: "frogol:{slug}"
	key := fmt.Sprintf("frogol:%s", slug)

	// Get from Redis
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Cache miss - not an error, just not found
		metrics.RecordCacheMiss()
		return nil, nil
	}
	if err != nil {
		// Actual error (connection issue, etc.)
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	// Cache hit!
	metrics.RecordCacheHit()

	// Deserialize JSON to domain.PublicProfile
	var profile domain.PublicProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}

	return &profile, nil
}

// SetProfile stores a public profile in cache
func (c *Cache) SetProfile(ctx context.Context, slug string, profile *domain.PublicProfile) error {
	key := fmt.Sprintf("frogol:%s", slug)

	// Serialize profile to JSON
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// Store in Redis with TTL
	// TTL ensures cache doesn't grow indefinitely and stale data is removed
	err = c.client.Set(ctx, key, data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// DeleteProfile removes a public profile from cache
// Used when the page or its links change, so readers never see stale links
// past the invalidation
func (c *Cache) DeleteProfile(ctx context.Context, slug string) error {
	key := fmt.Sprintf("frogol:%s", slug)

	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// Exists checks if a profile is cached
func (c *Cache) Exists(ctx context.Context, slug string) (bool, error) {
	key := fmt.Sprintf("frogol:%s", slug)

	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}

	return count > 0, nil
}

// Clear removes all cached profiles
// Useful for testing or cache invalidation
func (c *Cache) Clear(ctx context.Context) error {
	// Use SCAN to find all frogol:* keys
	iter := c.client.Scan(ctx, 0, "frogol:*", 0).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan error: %w", err)
	}

	if len(keys) > 0 {
		err := c.client.Del(ctx, keys...).Err()
		if err != nil {
			return fmt.Errorf("redis delete error: %w", err)
		}
	}

	return nil
}

// GetStats returns cache statistics
func (c *Cache) GetStats(ctx context.Context) (map[string]interface{}, error) {
	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return nil, fmt.Errorf("redis info error: %w", err)
	}

	// Count cached profiles
	count := 0
	iter := c.client.Scan(ctx, 0, "frogol:*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}

	return map[string]interface{}{
		"cached_profiles": count,
		"info":            info,
	}, nil
}

// InitRedis creates a new Redis client
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Connection pool settings
		PoolSize:     10,              // Maximum number of socket connections
		MinIdleConns: 2,               // Minimum number of idle connections
		MaxRetries:   3,               // Maximum number of retries
		DialTimeout:  5 * time.Second, // Timeout for establishing connection
		ReadTimeout:  3 * time.Second, // Timeout for socket reads
		WriteTimeout: 3 * time.Second, // Timeout for socket writes
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
