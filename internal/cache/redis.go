package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DashboardSummaryKey = "dashboard:summary"
	UnreadCountKeyFmt   = "notifications:count:%d"
)

var client *redis.Client

// Init initializes the Redis connection. Every helper degrades gracefully when
// Redis is unavailable, so the cache is strictly optional.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	userID, err := client.Get(ctx, hashCredentials(email, password)).Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int64) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(email, password), userID, 15*time.Minute)
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// UnreadCountKey is the per-user unread-notification counter key
func UnreadCountKey(userID int) string {
	return fmt.Sprintf(UnreadCountKeyFmt, userID)
}

// InvalidateShoeingCaches clears everything derived from shoeing rows.
// Called when: CreateShoeing, EditShoeing, Accept, AcceptAll, Reject, Delete
func InvalidateShoeingCaches(ctx context.Context) {
	InvalidatePattern(ctx, "shoeings:*")
	InvalidateKeys(ctx, DashboardSummaryKey)
}

// InvalidateNotificationCount clears a user's unread counter.
// Called when: notification created, read, or soft-deleted
func InvalidateNotificationCount(ctx context.Context, userID int) {
	InvalidateKeys(ctx, UnreadCountKey(userID))
}

// InvalidateCustomerCaches clears customer list/search caches.
// Called when: CreateCustomer, UpdateCustomer, DeleteCustomer
func InvalidateCustomerCaches(ctx context.Context) {
	InvalidatePattern(ctx, "customers:*")
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
