package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// RedisRelay publishes notifications on a Redis channel and feeds every
// message it receives into a local publisher. Each instance runs one relay,
// so a user connected to any instance sees notifications raised on all of them.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Publisher
}

func NewRedisRelay(client *redis.Client, channel string, local Publisher) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, local: local}
}

func (r *RedisRelay) Publish(ctx context.Context, n models.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return r.client.Publish(ctx, r.channel, b).Err()
}

// Run subscribes to the channel and forwards messages until ctx is done.
// The subscription is confirmed before Run starts reading, so callers may
// publish once ready has been closed.
func (r *RedisRelay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ready != nil {
			close(ready)
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	utils.Sugar.Infow("notification relay subscribed", "channel", r.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				utils.Sugar.Warnw("discarding malformed relay message", "error", err)
				continue
			}
			if err := r.local.Publish(ctx, n); err != nil {
				utils.Sugar.Warnw("relay local publish failed", "recipient", n.RecipientID, "error", err)
			}
		}
	}
}
