package subscriptions

import (
	"context"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
)

type Service struct {
	repo  Repository
	users *users.Service
}

func NewService(repo Repository, userSvc *users.Service) *Service {
	return &Service{repo: repo, users: userSvc}
}

// Subscribe makes subscriberID a follower of userID.
func (s *Service) Subscribe(ctx context.Context, subscriberID, userID int64) error {
	if err := s.resolvePair(ctx, subscriberID, userID); err != nil {
		return err
	}
	if subscriberID == userID {
		return faults.Conflictf("user %d cannot subscribe to themselves", userID)
	}
	exists, err := s.repo.Exists(ctx, userID, subscriberID)
	if err != nil {
		return err
	}
	if exists {
		return faults.Conflictf("user %d is already subscribed to user %d", subscriberID, userID)
	}
	return s.repo.Create(ctx, userID, subscriberID)
}

// Unsubscribe removes an existing subscription.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, userID int64) error {
	if err := s.resolvePair(ctx, subscriberID, userID); err != nil {
		return err
	}
	exists, err := s.repo.Exists(ctx, userID, subscriberID)
	if err != nil {
		return err
	}
	if !exists {
		return faults.Conflictf("user %d is not subscribed to user %d", subscriberID, userID)
	}
	return s.repo.Delete(ctx, userID, subscriberID)
}

// Subscriptions lists the users subscriberID follows, newest first.
func (s *Service) Subscriptions(ctx context.Context, subscriberID int64, page pagination.Page) ([]users.User, error) {
	if _, err := s.users.Get(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, subscriberID, page)
}

// Subscribers lists the followers of userID, newest first.
func (s *Service) Subscribers(ctx context.Context, userID int64, page pagination.Page) ([]users.User, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListSubscribers(ctx, userID, page)
}

func (s *Service) resolvePair(ctx context.Context, subscriberID, userID int64) error {
	if _, err := s.users.Get(ctx, subscriberID); err != nil {
		return err
	}
	_, err := s.users.Get(ctx, userID)
	return err
}
