package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"driftline/internal/feed"
	"driftline/pkg/logger"
)

// Publisher fans every document mutation out to realtime consumers: the
// websocket hub for connected clients and Redis pub/sub for co-located
// ones.
type Publisher struct {
	hub   *Hub
	redis *redis.Client
	log   *logger.Logger
}

func NewPublisher(hub *Hub, redisClient *redis.Client, log *logger.Logger) *Publisher {
	return &Publisher{hub: hub, redis: redisClient, log: log}
}

// Publish broadcasts one mutation. payload must be the full document, so
// subscribers can treat every event as authoritative for that document.
func (p *Publisher) Publish(ctx context.Context, channel, eventType, documentID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Errorf("marshal event payload for %s: %v", documentID, err)
		return
	}

	envelope := feed.Envelope{
		EventType:  eventType,
		Collection: collectionOf(channel),
		DocumentID: documentID,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}

	if p.hub != nil {
		frame, err := json.Marshal(struct {
			Channel string `json:"channel"`
			feed.Envelope
		}{Channel: channel, Envelope: envelope})
		if err == nil {
			p.hub.Broadcast(channel, frame)
		}
	}

	if p.redis != nil {
		data, err := json.Marshal(envelope)
		if err != nil {
			return
		}
		if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
			p.log.Warnf("redis publish to %s failed: %v", channel, err)
		}
	}
}

// collectionOf strips the channel prefix: "channel:documents:messages"
// yields "messages".
func collectionOf(channel string) string {
	if i := strings.LastIndex(channel, ":"); i >= 0 {
		return channel[i+1:]
	}
	return channel
}
