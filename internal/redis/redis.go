// Package redis builds the client shared by the event journal and the
// task queue's broker connection.
package redis

import "github.com/redis/go-redis/v9"

// NewClient creates a Redis client for addr (host:port).
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
