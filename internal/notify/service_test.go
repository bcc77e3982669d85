package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftline/internal/domain"
	driftline_errors "driftline/pkg/errors"
)

type fakeProfileRepo struct {
	profiles map[string]domain.Profile
}

func newFakeProfileRepo(profiles ...domain.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[string]domain.Profile)}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return domain.Profile{}, driftline_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p domain.Profile) error {
	r.profiles[p.UserID] = p
	return nil
}

func (r *fakeProfileRepo) UpdateNotifications(_ context.Context, userID string, tokens []string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return driftline_errors.ErrNotFound
	}
	p.Notifications = domain.StringList(tokens)
	r.profiles[userID] = p
	return nil
}

func (r *fakeProfileRepo) UpdateFollowGraph(_ context.Context, userID string, followers, following []string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return driftline_errors.ErrNotFound
	}
	p.Followers = domain.StringList(followers)
	p.Following = domain.StringList(following)
	r.profiles[userID] = p
	return nil
}

func testProfile(userID string) domain.Profile {
	return domain.Profile{ID: domain.NewID(), UserID: userID, Name: userID}
}

func TestPushAndFetch(t *testing.T) {
	repo := newFakeProfileRepo(testProfile("u1"))
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Push(ctx, "u1", "u2", "p1", "u2 liked your post")
	require.NoError(t, err)
	second, err := svc.Push(ctx, "u1", "u3", "", "u3 started following you")
	require.NoError(t, err)
	assert.False(t, first.Read)

	got, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestFetchSkipsMalformedTokens(t *testing.T) {
	p := testProfile("u1")
	p.Notifications = domain.StringList{
		"garbage",
		domain.Notification{ID: "n1", Text: "ok", CreatedAt: "2026-09-01T10:00:00Z", ToUserID: "u1"}.Token(),
	}
	svc := NewService(newFakeProfileRepo(p))

	got, err := svc.Fetch(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
}

func TestMarkRead(t *testing.T) {
	repo := newFakeProfileRepo(testProfile("u1"))
	svc := NewService(repo)
	ctx := context.Background()

	n, err := svc.Push(ctx, "u1", "u2", "p1", "hi")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, "u1", n.ID))

	got, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Read)
}

func TestDelete(t *testing.T) {
	repo := newFakeProfileRepo(testProfile("u1"))
	svc := NewService(repo)
	ctx := context.Background()

	n, err := svc.Push(ctx, "u1", "u2", "p1", "hi")
	require.NoError(t, err)
	keep, err := svc.Push(ctx, "u1", "u3", "", "other")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", n.ID))

	got, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)
}
