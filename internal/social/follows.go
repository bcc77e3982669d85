package social

import (
	"context"
	"fmt"

	"driftline/internal/notify"
	"driftline/internal/repository"
)

// FollowService maintains the follower/following lists on profile
// documents.
type FollowService struct {
	profiles repository.ProfileRepository
	notifier *notify.Service
}

func NewFollowService(profiles repository.ProfileRepository, notifier *notify.Service) *FollowService {
	return &FollowService{profiles: profiles, notifier: notifier}
}

// Follow adds target to current's following list and current to target's
// followers. Both updates are idempotent.
func (s *FollowService) Follow(ctx context.Context, currentUserID, targetUserID string) error {
	if currentUserID == targetUserID {
		return fmt.Errorf("follow: user cannot follow themselves")
	}

	current, err := s.profiles.GetByUserID(ctx, currentUserID)
	if err != nil {
		return fmt.Errorf("follow %s: %w", targetUserID, err)
	}
	target, err := s.profiles.GetByUserID(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("follow %s: %w", targetUserID, err)
	}

	following := addUnique(current.Following, targetUserID)
	followers := addUnique(target.Followers, currentUserID)

	if err := s.profiles.UpdateFollowGraph(ctx, currentUserID, current.Followers, following); err != nil {
		return fmt.Errorf("follow %s: %w", targetUserID, err)
	}
	if err := s.profiles.UpdateFollowGraph(ctx, targetUserID, followers, target.Following); err != nil {
		return fmt.Errorf("follow %s: %w", targetUserID, err)
	}

	if s.notifier != nil {
		_, _ = s.notifier.Push(ctx, targetUserID, currentUserID, "", "started following you")
	}
	return nil
}

// Unfollow reverses Follow.
func (s *FollowService) Unfollow(ctx context.Context, currentUserID, targetUserID string) error {
	current, err := s.profiles.GetByUserID(ctx, currentUserID)
	if err != nil {
		return fmt.Errorf("unfollow %s: %w", targetUserID, err)
	}
	target, err := s.profiles.GetByUserID(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("unfollow %s: %w", targetUserID, err)
	}

	following := removeAll(current.Following, targetUserID)
	followers := removeAll(target.Followers, currentUserID)

	if err := s.profiles.UpdateFollowGraph(ctx, currentUserID, current.Followers, following); err != nil {
		return fmt.Errorf("unfollow %s: %w", targetUserID, err)
	}
	if err := s.profiles.UpdateFollowGraph(ctx, targetUserID, followers, target.Following); err != nil {
		return fmt.Errorf("unfollow %s: %w", targetUserID, err)
	}
	return nil
}

func addUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(append([]string{}, list...), id)
}

func removeAll(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == id {
			continue
		}
		out = append(out, v)
	}
	return out
}
