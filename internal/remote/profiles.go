package remote

import (
	"context"
	"net/http"

	"driftline/internal/domain"
	"driftline/internal/transport/httpdto"
)

// ProfilesAPI implements repository.ProfileRepository against the hosted
// profiles collection.
type ProfilesAPI struct {
	c *Client
}

func (c *Client) Profiles() *ProfilesAPI {
	return &ProfilesAPI{c: c}
}

func (a *ProfilesAPI) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var out domain.Profile
	if err := a.c.do(ctx, http.MethodGet, "/v1/profiles/"+userID, nil, &out, true); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

func (a *ProfilesAPI) Create(ctx context.Context, p *domain.Profile) error {
	var out domain.Profile
	if err := a.c.do(ctx, http.MethodPost, "/v1/profiles", p, &out, true); err != nil {
		return err
	}
	*p = out
	return nil
}

func (a *ProfilesAPI) Update(ctx context.Context, p domain.Profile) error {
	return a.c.do(ctx, http.MethodPut, "/v1/profiles/"+p.UserID, p, nil, true)
}

func (a *ProfilesAPI) UpdateNotifications(ctx context.Context, userID string, tokens []string) error {
	req := httpdto.PatchProfileRequest{Notifications: &tokens}
	return a.c.do(ctx, http.MethodPatch, "/v1/profiles/"+userID, req, nil, true)
}

func (a *ProfilesAPI) UpdateFollowGraph(ctx context.Context, userID string, followers, following []string) error {
	req := httpdto.PatchProfileRequest{Followers: &followers, Following: &following}
	return a.c.do(ctx, http.MethodPatch, "/v1/profiles/"+userID, req, nil, true)
}
