package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftline/internal/domain"
	"driftline/internal/notify"
	driftline_errors "driftline/pkg/errors"
)

type fakePostRepo struct {
	posts map[string]domain.Post
}

func newFakePostRepo(posts ...domain.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]domain.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return domain.Post{}, driftline_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakePostRepo) ListActive(_ context.Context) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		if p.Status == domain.PostStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListByUser(_ context.Context, userID string) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Create(_ context.Context, p *domain.Post) error {
	r.posts[p.ID] = *p
	return nil
}

func (r *fakePostRepo) Update(_ context.Context, p domain.Post) error {
	if _, ok := r.posts[p.ID]; !ok {
		return driftline_errors.ErrNotFound
	}
	r.posts[p.ID] = p
	return nil
}

func (r *fakePostRepo) UpdateLikes(_ context.Context, id string, likes []string) error {
	p, ok := r.posts[id]
	if !ok {
		return driftline_errors.ErrNotFound
	}
	p.Likes = domain.StringList(likes)
	r.posts[id] = p
	return nil
}

func (r *fakePostRepo) UpdateComments(_ context.Context, id string, comments []string) error {
	p, ok := r.posts[id]
	if !ok {
		return driftline_errors.ErrNotFound
	}
	p.Comments = domain.StringList(comments)
	r.posts[id] = p
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return driftline_errors.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]domain.Profile
}

func newFakeProfileRepo(userIDs ...string) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[string]domain.Profile)}
	for _, id := range userIDs {
		r.profiles[id] = domain.Profile{ID: domain.NewID(), UserID: id, Name: id}
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

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo("author", "reader")
	notifier := notify.NewService(profiles)
	posts := newFakePostRepo(domain.Post{ID: "p1", UserID: "author", Status: domain.PostStatusActive})
	svc := NewPostService(posts, notifier)

	liked, err := svc.ToggleLike(ctx, "p1", "reader")
	require.NoError(t, err)
	assert.True(t, liked)

	post, err := posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"reader"}, post.Likes)

	// The author hears about it.
	ns, err := notifier.Fetch(ctx, "author")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "liked your post", ns[0].Text)
	assert.Equal(t, "p1", ns[0].PostID)

	// Toggling again removes the like and stays quiet.
	liked, err = svc.ToggleLike(ctx, "p1", "reader")
	require.NoError(t, err)
	assert.False(t, liked)

	post, err = posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, post.Likes)

	ns, err = notifier.Fetch(ctx, "author")
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo("author")
	notifier := notify.NewService(profiles)
	posts := newFakePostRepo(domain.Post{ID: "p1", UserID: "author", Status: domain.PostStatusActive})
	svc := NewPostService(posts, notifier)

	liked, err := svc.ToggleLike(ctx, "p1", "author")
	require.NoError(t, err)
	assert.True(t, liked)

	ns, err := notifier.Fetch(ctx, "author")
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestAddAndDeleteComment(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo("author", "reader")
	notifier := notify.NewService(profiles)
	posts := newFakePostRepo(domain.Post{ID: "p1", UserID: "author", Status: domain.PostStatusActive})
	svc := NewPostService(posts, notifier)

	c, err := svc.AddComment(ctx, "p1", "reader", "great read")
	require.NoError(t, err)

	post, err := posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	comments := Comments(post)
	require.Len(t, comments, 1)
	assert.Equal(t, "great read", comments[0].Text)
	assert.Equal(t, "reader", comments[0].UserID)

	ns, err := notifier.Fetch(ctx, "author")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "commented on your post", ns[0].Text)

	require.NoError(t, svc.DeleteComment(ctx, "p1", c.CreatedAt))
	post, err = posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, Comments(post))
}

func TestCommentsSkipsMalformedTokens(t *testing.T) {
	post := domain.Post{
		ID:       "p1",
		Comments: domain.StringList{"garbage", "u1@@@fine@@@2026-09-01T10:00:00Z"},
	}
	comments := Comments(post)
	require.Len(t, comments, 1)
	assert.Equal(t, "fine", comments[0].Text)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	posts := newFakePostRepo()
	svc := NewPostService(posts, nil)

	p, err := svc.Create(ctx, "author", "Title", "Body", "img.png")
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusActive, p.Status)
	assert.NotEmpty(t, p.ID)

	stored, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title", stored.Title)
}
