package feed

import (
	"context"
	"encoding/json"
	"time"
)

// Event type constants, format: domain.action
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageUpdated = "message.updated"
	EventTypeMessageDeleted = "message.deleted"
	EventTypeChatCreated    = "chat.created"
	EventTypeChatUpdated    = "chat.updated"
	EventTypeProfileUpdated = "profile.updated"
)

// Collection-level channels. The feed is global per collection; scoping to a
// conversation is the subscriber's job, not the transport's.
const (
	ChannelMessages = "channel:documents:messages"
	ChannelChats    = "channel:documents:chats"
	ChannelProfiles = "channel:documents:profiles"
)

// Envelope wraps every document mutation pushed over a feed.
type Envelope struct {
	EventType  string          `json:"event_type"`
	Collection string          `json:"collection"`
	DocumentID string          `json:"document_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Handler receives envelopes for one subscription. Handlers run on the feed
// implementation's goroutine and must not block for long.
type Handler func(evt Envelope)

// CancelFunc detaches a subscription. Best-effort: an in-flight delivery may
// still complete after it returns.
type CancelFunc func()

// Feed is the change-feed collaborator: an always-on push channel managed by
// the transport. Reconnection is the implementation's responsibility.
type Feed interface {
	Subscribe(ctx context.Context, channel string, handler Handler) (CancelFunc, error)
}
