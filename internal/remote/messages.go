package remote

import (
	"context"
	"net/http"
	"net/url"

	"driftline/internal/domain"
	"driftline/internal/transport/httpdto"
)

// MessagesAPI implements repository.MessageRepository against the hosted
// messages collection.
type MessagesAPI struct {
	c *Client
}

func (c *Client) Messages() *MessagesAPI {
	return &MessagesAPI{c: c}
}

func (a *MessagesAPI) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	params := url.Values{"chat_id": {chatID}}
	var out httpdto.MessageListResponse
	if err := a.c.do(ctx, http.MethodGet, queryPath("/v1/messages", params), nil, &out, true); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (a *MessagesAPI) GetByID(ctx context.Context, id string) (domain.Message, error) {
	var out domain.Message
	if err := a.c.do(ctx, http.MethodGet, "/v1/messages/"+id, nil, &out, true); err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

func (a *MessagesAPI) Create(ctx context.Context, m *domain.Message) error {
	var out domain.Message
	if err := a.c.do(ctx, http.MethodPost, "/v1/messages", m, &out, true); err != nil {
		return err
	}
	*m = out
	return nil
}

func (a *MessagesAPI) UpdateContent(ctx context.Context, id, content string) error {
	req := httpdto.PatchMessageRequest{Content: &content}
	return a.c.do(ctx, http.MethodPatch, "/v1/messages/"+id, req, nil, true)
}

func (a *MessagesAPI) UpdateReactions(ctx context.Context, id string, tokens []string) error {
	req := httpdto.PatchMessageRequest{Reactions: &tokens}
	return a.c.do(ctx, http.MethodPatch, "/v1/messages/"+id, req, nil, true)
}

func (a *MessagesAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/v1/messages/"+id, nil, nil, true)
}
