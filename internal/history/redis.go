package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueue is the Redis list hand records are appended to.
const DefaultQueue = "holdem:hand_history"

// RedisPublisher appends JSON hand records to a Redis list for a downstream
// consumer to drain.
type RedisPublisher struct {
	client *redis.Client
	queue  string
}

// NewRedisPublisher wraps an existing client. An empty queue uses
// DefaultQueue.
func NewRedisPublisher(client *redis.Client, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisPublisher{client: client, queue: queue}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, rec HandRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal hand %s: %w", rec.HandID, err)
	}
	if err := p.client.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("rpush to redis list %q: %w", p.queue, err)
	}
	return nil
}
