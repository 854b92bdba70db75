package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

type relayEnvelope struct {
	UserID  int64           `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay carries pushes through a Redis pub/sub channel so that every
// instance delivers them to the clients it holds. Delivery is at-most-once.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisRelay builds a relay. hub may be nil for publish-only processes.
func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, hub: hub}
}

func (r *RedisRelay) Publish(ctx context.Context, userID int64, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	env, err := json.Marshal(relayEnvelope{UserID: userID, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, env).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Start subscribes and delivers relayed pushes to the local hub until ctx is
// cancelled. It returns once the subscription is confirmed.
func (r *RedisRelay) Start(ctx context.Context) error {
	if r.hub == nil {
		return fmt.Errorf("relay has no hub to deliver to")
	}

	pubsub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var env relayEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("relay: bad envelope on %s: %v", r.channel, err)
					continue
				}
				r.hub.Deliver(env.UserID, env.Payload)
			}
		}
	}()

	log.Printf("relay: subscribed channel=%s", r.channel)
	return nil
}
