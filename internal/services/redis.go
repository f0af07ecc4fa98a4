package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/chachabrian/ride-admin-backend/internal/models"
)

// RideEventsChannel is the pub/sub channel carrying appended ride events.
const RideEventsChannel = "ride:events"

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// FeedMessage is the JSON frame sent to live feed subscribers.
type FeedMessage struct {
	Type string           `json:"type"`
	Data models.RideEvent `json:"data"`
}

func encodeEvent(event models.RideEvent) ([]byte, error) {
	return json.Marshal(FeedMessage{Type: "ride_event", Data: event})
}

// RedisPublisher publishes ride events on RideEventsChannel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishRideEvent(ctx context.Context, event models.RideEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, RideEventsChannel, data).Err()
}

// Subscribe forwards every message on RideEventsChannel to the hub until ctx
// is cancelled.
func (p *RedisPublisher) Subscribe(ctx context.Context, hub *Hub, logger *slog.Logger) {
	pubsub := p.client.Subscribe(ctx, RideEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				logger.Warn("ride event subscription closed")
				return
			}
			hub.Broadcast([]byte(msg.Payload))
		}
	}
}

// HubPublisher skips Redis and hands events straight to an in-process hub.
type HubPublisher struct {
	hub *Hub
}

func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) PublishRideEvent(_ context.Context, event models.RideEvent) error {
	if p.hub == nil {
		return nil
	}
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	p.hub.Broadcast(data)
	return nil
}
