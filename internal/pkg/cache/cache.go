package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/revitalife/revitalife-shop/internal/pkg/env"
)

var client *redis.Client

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(ctx context.Context, key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// SetJSON marshals the value and stores it under the key.
func SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return GetClient().Set(ctx, key, data, expiration).Err()
}

// GetJSON loads the key and unmarshals it into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := GetClient().Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a value from the cache by key
func Delete(ctx context.Context, key string) error {
	return GetClient().Del(ctx, key).Err()
}

// IsMiss reports whether the error is a cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}
