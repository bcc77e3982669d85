package chatview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driftline/internal/domain"
	"driftline/internal/feed"
	"driftline/internal/repository"
	driftline_errors "driftline/pkg/errors"
)

// ChatDirectory answers which conversations a user has and opens new ones.
type ChatDirectory struct {
	chats repository.ChatRepository
	sub   *StreamSubscriber
}

func NewChatDirectory(chats repository.ChatRepository, sub *StreamSubscriber) *ChatDirectory {
	return &ChatDirectory{chats: chats, sub: sub}
}

func (d *ChatDirectory) ListForUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	return d.chats.ListByUser(ctx, userID)
}

// Ensure returns the chat between the two users, creating it if none
// exists. displayName names the chat after the peer, as the reference client
// does.
func (d *ChatDirectory) Ensure(ctx context.Context, userID, peerID, displayName string) (domain.Chat, error) {
	chat, err := d.chats.GetBetween(ctx, userID, peerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, driftline_errors.ErrNotFound) {
		return domain.Chat{}, fmt.Errorf("lookup chat between %s and %s: %w", userID, peerID, err)
	}

	chat = domain.Chat{
		ID:           domain.NewID(),
		Participants: domain.StringList{userID, peerID},
		CreatedAt:    time.Now().UTC(),
		DisplayName:  displayName,
	}
	if err := d.chats.Create(ctx, &chat); err != nil {
		// Lost a create race: the peer opened the same chat first.
		if errors.Is(err, driftline_errors.ErrAlreadyExists) || errors.Is(err, driftline_errors.ErrConflict) {
			return d.chats.GetBetween(ctx, userID, peerID)
		}
		return domain.Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// WatchMembership subscribes to the user's conversation-membership feed.
func (d *ChatDirectory) WatchMembership(ctx context.Context, userID string, fn func(domain.Chat)) (feed.CancelFunc, error) {
	return d.sub.OnChatEvent(ctx, userID, fn)
}
