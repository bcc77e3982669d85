package remote

import (
	"context"
	"net/http"
	"net/url"

	"driftline/internal/domain"
	"driftline/internal/transport/httpdto"
)

// ChatsAPI implements repository.ChatRepository against the hosted chats
// collection.
type ChatsAPI struct {
	c *Client
}

func (c *Client) Chats() *ChatsAPI {
	return &ChatsAPI{c: c}
}

func (a *ChatsAPI) GetByID(ctx context.Context, id string) (domain.Chat, error) {
	var out domain.Chat
	if err := a.c.do(ctx, http.MethodGet, "/v1/chats/"+id, nil, &out, true); err != nil {
		return domain.Chat{}, err
	}
	return out, nil
}

func (a *ChatsAPI) ListByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	params := url.Values{"user_id": {userID}}
	var out httpdto.ChatListResponse
	if err := a.c.do(ctx, http.MethodGet, queryPath("/v1/chats", params), nil, &out, true); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (a *ChatsAPI) GetBetween(ctx context.Context, userA, userB string) (domain.Chat, error) {
	params := url.Values{"user_a": {userA}, "user_b": {userB}}
	var out domain.Chat
	if err := a.c.do(ctx, http.MethodGet, queryPath("/v1/chats/between", params), nil, &out, true); err != nil {
		return domain.Chat{}, err
	}
	return out, nil
}

func (a *ChatsAPI) Create(ctx context.Context, chat *domain.Chat) error {
	var out domain.Chat
	if err := a.c.do(ctx, http.MethodPost, "/v1/chats", chat, &out, true); err != nil {
		return err
	}
	*chat = out
	return nil
}
