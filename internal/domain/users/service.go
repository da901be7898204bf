package users

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new account. Name and email must both be unused.
func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	taken, err := s.repo.ExistsByName(ctx, params.Name)
	if err != nil {
		return nil, fmt.Errorf("check user name: %w", err)
	}
	if taken {
		return nil, faults.Conflictf("user name %q is already taken", params.Name)
	}

	taken, err = s.repo.ExistsByEmail(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("check user email: %w", err)
	}
	if taken {
		return nil, faults.Conflictf("email %q is already taken", params.Email)
	}

	return s.repo.Create(ctx, params)
}

func (s *Service) List(ctx context.Context, ids []int64, page pagination.Page) ([]User, error) {
	for _, id := range ids {
		if id == 0 {
			return nil, faults.Invalidf("user id is not set")
		}
	}
	return s.repo.List(ctx, ids, page)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Get looks up a user by id. A zero id is a validation error, a missing
// user a not-found fault.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	if id == 0 {
		return nil, faults.Invalidf("user id is not set")
	}
	return s.repo.GetByID(ctx, id)
}
