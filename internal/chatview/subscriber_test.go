package chatview

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftline/internal/domain"
	"driftline/internal/feed"
)

// fakeFeed delivers envelopes synchronously to registered handlers.
type fakeFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]feed.Handler

	// leakyCancel makes CancelFunc a no-op, simulating a late delivery
	// after a best-effort cancel.
	leakyCancel bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[string]map[int]feed.Handler)}
}

func (f *fakeFeed) Subscribe(_ context.Context, channel string, handler feed.Handler) (feed.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.subs[channel] == nil {
		f.subs[channel] = make(map[int]feed.Handler)
	}
	f.subs[channel][id] = handler

	if f.leakyCancel {
		return func() {}, nil
	}
	return func() {
		f.mu.Lock()
		delete(f.subs[channel], id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) emit(channel string, evt feed.Envelope) {
	f.mu.Lock()
	handlers := make([]feed.Handler, 0, len(f.subs[channel]))
	for _, h := range f.subs[channel] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}

func (f *fakeFeed) emitMessage(t *testing.T, eventType string, msg domain.Message) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	f.emit(feed.ChannelMessages, feed.Envelope{
		EventType:  eventType,
		Collection: "messages",
		DocumentID: msg.ID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}

func testMessage(id, chatID string) domain.Message {
	return domain.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  "u1",
		Content:   "hello",
		Kind:      domain.MessageKindText,
		Timestamp: time.Now().UTC(),
		Status:    domain.MessageStatusSent,
		Reactions: domain.StringList{},
	}
}

func TestOnMessageEventFiltersByChat(t *testing.T) {
	f := newFakeFeed()
	sub := NewStreamSubscriber(f)

	var got []MessageEvent
	cancel, err := sub.OnMessageEvent(context.Background(), "chatA", func(ev MessageEvent) {
		got = append(got, ev)
	})
	require.NoError(t, err)
	defer cancel()

	f.emitMessage(t, feed.EventTypeMessageCreated, testMessage("m1", "chatA"))
	f.emitMessage(t, feed.EventTypeMessageCreated, testMessage("m2", "chatB"))
	f.emitMessage(t, feed.EventTypeMessageDeleted, testMessage("m3", "chatA"))

	require.Len(t, got, 2)
	assert.Equal(t, MessageCreated, got[0].Type)
	assert.Equal(t, "m1", got[0].Message.ID)
	assert.Equal(t, MessageDeleted, got[1].Type)
	assert.Equal(t, "m3", got[1].Message.ID)
}

func TestOnMessageEventRejectsBadPayloads(t *testing.T) {
	f := newFakeFeed()
	sub := NewStreamSubscriber(f)

	calls := 0
	cancel, err := sub.OnMessageEvent(context.Background(), "chatA", func(MessageEvent) {
		calls++
	})
	require.NoError(t, err)
	defer cancel()

	// Undecodable payload.
	f.emit(feed.ChannelMessages, feed.Envelope{
		EventType: feed.EventTypeMessageCreated,
		Payload:   json.RawMessage(`{"messageId":`),
	})
	// Decodable but missing the message id.
	f.emit(feed.ChannelMessages, feed.Envelope{
		EventType: feed.EventTypeMessageCreated,
		Payload:   json.RawMessage(`{"chatId":"chatA","content":"x"}`),
	})
	// Unknown event type.
	f.emitMessage(t, "message.archived", testMessage("m1", "chatA"))

	assert.Zero(t, calls)
}

func TestOnReactionEventDerivesTriples(t *testing.T) {
	f := newFakeFeed()
	sub := NewStreamSubscriber(f)

	var got []domain.Reaction
	cancel, err := sub.OnReactionEvent(context.Background(), "chatA", func(r domain.Reaction) {
		got = append(got, r)
	})
	require.NoError(t, err)
	defer cancel()

	msg := testMessage("m1", "chatA")
	msg.Reactions = domain.StringList{"m1-u1-heart", "garbage", "m1-u2-laugh"}

	// Creates carry no reaction deltas, only updates do.
	f.emitMessage(t, feed.EventTypeMessageCreated, msg)
	assert.Empty(t, got)

	f.emitMessage(t, feed.EventTypeMessageUpdated, msg)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Reaction{MessageID: "m1", UserID: "u1", Kind: "heart"}, got[0])
	assert.Equal(t, domain.Reaction{MessageID: "m1", UserID: "u2", Kind: "laugh"}, got[1])
}

func TestOnChatEventFiltersByParticipant(t *testing.T) {
	f := newFakeFeed()
	sub := NewStreamSubscriber(f)

	var got []domain.Chat
	cancel, err := sub.OnChatEvent(context.Background(), "u1", func(c domain.Chat) {
		got = append(got, c)
	})
	require.NoError(t, err)
	defer cancel()

	mine, err := json.Marshal(domain.Chat{ID: "c1", Participants: domain.StringList{"u1", "u2"}})
	require.NoError(t, err)
	theirs, err := json.Marshal(domain.Chat{ID: "c2", Participants: domain.StringList{"u3", "u4"}})
	require.NoError(t, err)

	f.emit(feed.ChannelChats, feed.Envelope{EventType: feed.EventTypeChatCreated, Payload: mine})
	f.emit(feed.ChannelChats, feed.Envelope{EventType: feed.EventTypeChatCreated, Payload: theirs})

	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestCancelStopsDelivery(t *testing.T) {
	f := newFakeFeed()
	sub := NewStreamSubscriber(f)

	calls := 0
	cancel, err := sub.OnMessageEvent(context.Background(), "chatA", func(MessageEvent) {
		calls++
	})
	require.NoError(t, err)

	f.emitMessage(t, feed.EventTypeMessageCreated, testMessage("m1", "chatA"))
	cancel()
	f.emitMessage(t, feed.EventTypeMessageCreated, testMessage("m2", "chatA"))

	assert.Equal(t, 1, calls)
}
