package repository

import (
	"context"

	"driftline/internal/domain"
)

// MessageRepository is the document-store collaborator for the messages
// collection. Implementations: Postgres (this package) and the REST client
// (internal/remote).
type MessageRepository interface {
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Create(ctx context.Context, m *domain.Message) error
	UpdateContent(ctx context.Context, id, content string) error
	UpdateReactions(ctx context.Context, id string, tokens []string) error
	Delete(ctx context.Context, id string) error
}

type ChatRepository interface {
	GetByID(ctx context.Context, id string) (domain.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Chat, error)
	GetBetween(ctx context.Context, userA, userB string) (domain.Chat, error)
	Create(ctx context.Context, c *domain.Chat) error
}

type PostRepository interface {
	GetByID(ctx context.Context, id string) (domain.Post, error)
	ListActive(ctx context.Context) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Create(ctx context.Context, p *domain.Post) error
	Update(ctx context.Context, p domain.Post) error
	UpdateLikes(ctx context.Context, id string, likes []string) error
	UpdateComments(ctx context.Context, id string, comments []string) error
	Delete(ctx context.Context, id string) error
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, p domain.Profile) error
	UpdateNotifications(ctx context.Context, userID string, tokens []string) error
	UpdateFollowGraph(ctx context.Context, userID string, followers, following []string) error
}
