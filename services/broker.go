package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBroker relays change events through a redis channel so every
// instance's hub sees writes made on any instance.
type RedisBroker struct {
	redis   *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBroker(redis *redis.Client, channel string, hub *Hub) *RedisBroker {
	return &RedisBroker{
		redis:   redis,
		channel: channel,
		hub:     hub,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, b.channel, data).Err()
}

// Run forwards messages from the redis channel to the local hub until ctx is
// cancelled.
func (b *RedisBroker) Run(ctx context.Context) {
	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	log.Printf("Subscribed to redis channel %s", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := b.hub.Broadcast(ctx, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to forward redis event to hub: %v", err)
			}
		}
	}
}
