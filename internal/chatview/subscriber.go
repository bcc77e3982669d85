package chatview

import (
	"context"
	"encoding/json"

	"driftline/internal/domain"
	"driftline/internal/feed"
)

// MessageEventType tags a decoded message event.
type MessageEventType string

const (
	MessageCreated MessageEventType = "created"
	MessageUpdated MessageEventType = "updated"
	MessageDeleted MessageEventType = "deleted"
)

// MessageEvent is a typed, validated message push.
type MessageEvent struct {
	Type    MessageEventType
	Message domain.Message
}

// StreamSubscriber is the typed decode boundary over the change feed. The
// transport delivers unfiltered collection-level feeds; conversation scoping
// and payload validation happen here, before anything reaches the
// Reconciler.
type StreamSubscriber struct {
	feed feed.Feed
}

func NewStreamSubscriber(f feed.Feed) *StreamSubscriber {
	return &StreamSubscriber{feed: f}
}

// OnMessageEvent delivers message documents belonging to chatID. Payloads
// that fail to decode or carry no message id are rejected.
func (s *StreamSubscriber) OnMessageEvent(ctx context.Context, chatID string, fn func(MessageEvent)) (feed.CancelFunc, error) {
	return s.feed.Subscribe(ctx, feed.ChannelMessages, func(evt feed.Envelope) {
		msg, ok := decodeMessage(evt.Payload)
		if !ok || msg.ChatID != chatID {
			return
		}
		eventType, ok := messageEventType(evt.EventType)
		if !ok {
			return
		}
		fn(MessageEvent{Type: eventType, Message: msg})
	})
}

// OnReactionEvent re-splits the reactions field of any payload matching
// chatID into typed triples. Malformed tokens are skipped.
func (s *StreamSubscriber) OnReactionEvent(ctx context.Context, chatID string, fn func(domain.Reaction)) (feed.CancelFunc, error) {
	return s.feed.Subscribe(ctx, feed.ChannelMessages, func(evt feed.Envelope) {
		if evt.EventType != feed.EventTypeMessageUpdated {
			return
		}
		msg, ok := decodeMessage(evt.Payload)
		if !ok || msg.ChatID != chatID {
			return
		}
		for _, token := range msg.Reactions {
			r, err := domain.ParseReaction(token)
			if err != nil {
				continue
			}
			fn(r)
		}
	})
}

// OnChatEvent delivers chat documents the given user participates in, from
// the conversation-membership feed.
func (s *StreamSubscriber) OnChatEvent(ctx context.Context, userID string, fn func(domain.Chat)) (feed.CancelFunc, error) {
	return s.feed.Subscribe(ctx, feed.ChannelChats, func(evt feed.Envelope) {
		var chat domain.Chat
		if err := json.Unmarshal(evt.Payload, &chat); err != nil || chat.ID == "" {
			return
		}
		if !chat.HasParticipant(userID) {
			return
		}
		fn(chat)
	})
}

func decodeMessage(payload json.RawMessage) (domain.Message, bool) {
	var msg domain.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.Message{}, false
	}
	if msg.ID == "" || msg.ChatID == "" {
		return domain.Message{}, false
	}
	return msg, true
}

func messageEventType(eventType string) (MessageEventType, bool) {
	switch eventType {
	case feed.EventTypeMessageCreated:
		return MessageCreated, true
	case feed.EventTypeMessageUpdated:
		return MessageUpdated, true
	case feed.EventTypeMessageDeleted:
		return MessageDeleted, true
	}
	return "", false
}
