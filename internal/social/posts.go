package social

import (
	"context"
	"fmt"
	"time"

	"driftline/internal/domain"
	"driftline/internal/notify"
	"driftline/internal/repository"
)

// PostService carries the blog-side operations: post CRUD, the likes list,
// and flat-token comments. Likes and comments notify the post's author.
type PostService struct {
	posts    repository.PostRepository
	notifier *notify.Service
}

func NewPostService(posts repository.PostRepository, notifier *notify.Service) *PostService {
	return &PostService{posts: posts, notifier: notifier}
}

func (s *PostService) Create(ctx context.Context, userID, title, content, featuredImage string) (domain.Post, error) {
	p := domain.Post{
		ID:            domain.NewID(),
		UserID:        userID,
		Title:         title,
		Content:       content,
		FeaturedImage: featuredImage,
		Status:        domain.PostStatusActive,
		Likes:         domain.StringList{},
		Comments:      domain.StringList{},
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, &p); err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id string) (domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) ListActive(ctx context.Context) ([]domain.Post, error) {
	return s.posts.ListActive(ctx)
}

func (s *PostService) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *PostService) Update(ctx context.Context, p domain.Post) error {
	return s.posts.Update(ctx, p)
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

// ToggleLike adds userID to the post's likes, or removes it when already
// present. Returns whether the post ends up liked. A fresh like notifies
// the author.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("toggle like on %s: %w", postID, err)
	}

	liked := false
	likes := make([]string, 0, len(post.Likes)+1)
	for _, id := range post.Likes {
		if id == userID {
			continue
		}
		likes = append(likes, id)
	}
	if len(likes) == len(post.Likes) {
		likes = append(likes, userID)
		liked = true
	}

	if err := s.posts.UpdateLikes(ctx, postID, likes); err != nil {
		return false, fmt.Errorf("toggle like on %s: %w", postID, err)
	}

	if liked && s.notifier != nil && post.UserID != userID {
		_, _ = s.notifier.Push(ctx, post.UserID, userID, postID, "liked your post")
	}
	return liked, nil
}

// AddComment appends a comment token and returns the typed comment.
func (s *PostService) AddComment(ctx context.Context, postID, userID, text string) (domain.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("comment on %s: %w", postID, err)
	}

	c := domain.Comment{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	tokens := append([]string(post.Comments), c.Token())

	if err := s.posts.UpdateComments(ctx, postID, tokens); err != nil {
		return domain.Comment{}, fmt.Errorf("comment on %s: %w", postID, err)
	}

	if s.notifier != nil && post.UserID != userID {
		_, _ = s.notifier.Push(ctx, post.UserID, userID, postID, "commented on your post")
	}
	return c, nil
}

// DeleteComment removes the comment with the matching createdAt, which
// doubles as the comment's identity within a post.
func (s *PostService) DeleteComment(ctx context.Context, postID, createdAt string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete comment on %s: %w", postID, err)
	}

	tokens := make([]string, 0, len(post.Comments))
	for _, token := range post.Comments {
		if c, err := domain.ParseComment(token); err == nil && c.CreatedAt == createdAt {
			continue
		}
		tokens = append(tokens, token)
	}

	if err := s.posts.UpdateComments(ctx, postID, tokens); err != nil {
		return fmt.Errorf("delete comment on %s: %w", postID, err)
	}
	return nil
}

// Comments decodes a post's comment tokens, skipping malformed ones.
func Comments(post domain.Post) []domain.Comment {
	out := make([]domain.Comment, 0, len(post.Comments))
	for _, token := range post.Comments {
		c, err := domain.ParseComment(token)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
