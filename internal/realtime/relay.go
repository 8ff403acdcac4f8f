package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay shares broadcasts between API processes: Publish writes to a Redis
// channel and Run copies every message on that channel into the local hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisRelay builds a relay over channel.
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish sends message to every subscribed process, this one included.
func (r *RedisRelay) Publish(ctx context.Context, message []byte) error {
	return r.client.Publish(ctx, r.channel, message).Err()
}

// Run relays channel messages into the hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()

	r.logger.Info("realtime relay subscribed", zap.String("channel", r.channel))
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("realtime relay stopped")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.hub.Broadcast([]byte(msg.Payload))
		}
	}
}
