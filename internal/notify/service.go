package notify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"driftline/internal/domain"
	"driftline/internal/repository"
)

// Service manages the per-user notification inbox stored as flat tokens on
// the profile document.
type Service struct {
	profiles repository.ProfileRepository
}

func NewService(profiles repository.ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// Push appends a notification to toUserID's inbox and returns the stored
// record.
func (s *Service) Push(ctx context.Context, toUserID, fromUserID, postID, text string) (domain.Notification, error) {
	profile, err := s.profiles.GetByUserID(ctx, toUserID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("push notification to %s: %w", toUserID, err)
	}

	n := domain.Notification{
		ID:         domain.NewID(),
		Text:       text,
		Read:       false,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		PostID:     postID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
	}
	tokens := append([]string(profile.Notifications), n.Token())

	if err := s.profiles.UpdateNotifications(ctx, toUserID, tokens); err != nil {
		return domain.Notification{}, fmt.Errorf("push notification to %s: %w", toUserID, err)
	}
	return n, nil
}

// Fetch decodes the user's inbox, newest first. Malformed tokens are
// skipped.
func (s *Service) Fetch(ctx context.Context, userID string) ([]domain.Notification, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch notifications for %s: %w", userID, err)
	}

	out := make([]domain.Notification, 0, len(profile.Notifications))
	for _, token := range profile.Notifications {
		n, err := domain.ParseNotification(token)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	sortNewestFirst(out)
	return out, nil
}

// MarkRead rewrites the matching token with its read flag set.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.rewrite(ctx, userID, func(tokens []string) []string {
		out := make([]string, 0, len(tokens))
		for _, token := range tokens {
			n, err := domain.ParseNotification(token)
			if err == nil && n.ID == notificationID {
				n.Read = true
				out = append(out, n.Token())
				continue
			}
			out = append(out, token)
		}
		return out
	})
}

// Delete removes the notification with the given id.
func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	return s.rewrite(ctx, userID, func(tokens []string) []string {
		out := make([]string, 0, len(tokens))
		for _, token := range tokens {
			if n, err := domain.ParseNotification(token); err == nil && n.ID == notificationID {
				continue
			}
			out = append(out, token)
		}
		return out
	})
}

func (s *Service) rewrite(ctx context.Context, userID string, fn func([]string) []string) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("rewrite notifications for %s: %w", userID, err)
	}
	tokens := fn(profile.Notifications)
	if err := s.profiles.UpdateNotifications(ctx, userID, tokens); err != nil {
		return fmt.Errorf("rewrite notifications for %s: %w", userID, err)
	}
	return nil
}

func sortNewestFirst(ns []domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt > ns[j].CreatedAt
	})
}
