package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"driftline/pkg/logger"
)

// RedisFeed delivers document events over Redis Pub/Sub. Each Subscribe call
// opens its own PubSub so cancellation is per-subscription.
type RedisFeed struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisFeed(client *redis.Client, log *logger.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log}
}

func (f *RedisFeed) Subscribe(ctx context.Context, channel string, handler Handler) (CancelFunc, error) {
	sub := f.client.Subscribe(ctx, channel)

	// Force the subscription onto the wire before returning so no event
	// published after Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	go f.listen(subCtx, sub, handler)

	return func() {
		cancel()
		_ = sub.Close()
	}, nil
}

func (f *RedisFeed) listen(ctx context.Context, sub *redis.PubSub, handler Handler) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				if f.log != nil {
					f.log.Warnf("dropping undecodable feed payload on %s: %v", msg.Channel, err)
				}
				continue
			}
			handler(evt)
		}
	}
}
