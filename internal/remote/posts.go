package remote

import (
	"context"
	"net/http"
	"net/url"

	"driftline/internal/domain"
	"driftline/internal/transport/httpdto"
)

// PostsAPI implements repository.PostRepository against the hosted posts
// collection.
type PostsAPI struct {
	c *Client
}

func (c *Client) Posts() *PostsAPI {
	return &PostsAPI{c: c}
}

func (a *PostsAPI) GetByID(ctx context.Context, id string) (domain.Post, error) {
	var out domain.Post
	if err := a.c.do(ctx, http.MethodGet, "/v1/posts/"+id, nil, &out, true); err != nil {
		return domain.Post{}, err
	}
	return out, nil
}

func (a *PostsAPI) ListActive(ctx context.Context) ([]domain.Post, error) {
	var out httpdto.PostListResponse
	if err := a.c.do(ctx, http.MethodGet, "/v1/posts", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (a *PostsAPI) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	params := url.Values{"user_id": {userID}}
	var out httpdto.PostListResponse
	if err := a.c.do(ctx, http.MethodGet, queryPath("/v1/posts", params), nil, &out, true); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (a *PostsAPI) Create(ctx context.Context, p *domain.Post) error {
	var out domain.Post
	if err := a.c.do(ctx, http.MethodPost, "/v1/posts", p, &out, true); err != nil {
		return err
	}
	*p = out
	return nil
}

func (a *PostsAPI) Update(ctx context.Context, p domain.Post) error {
	return a.c.do(ctx, http.MethodPut, "/v1/posts/"+p.ID, p, nil, true)
}

func (a *PostsAPI) UpdateLikes(ctx context.Context, id string, likes []string) error {
	req := httpdto.PatchPostRequest{Likes: &likes}
	return a.c.do(ctx, http.MethodPatch, "/v1/posts/"+id, req, nil, true)
}

func (a *PostsAPI) UpdateComments(ctx context.Context, id string, comments []string) error {
	req := httpdto.PatchPostRequest{Comments: &comments}
	return a.c.do(ctx, http.MethodPatch, "/v1/posts/"+id, req, nil, true)
}

func (a *PostsAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/v1/posts/"+id, nil, nil, true)
}
