package categories

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

func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	taken, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, faults.Conflictf("category name %q is already taken", name)
	}
	return s.repo.Create(ctx, name)
}

func (s *Service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByNameExcept(ctx, name, id)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, faults.Conflictf("category name %q is already taken", name)
	}
	return s.repo.Update(ctx, id, name)
}

// Delete removes a category unless an event still references it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.repo.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("check category references: %w", err)
	}
	if inUse {
		return faults.Conflictf("category %d is referenced by at least one event", id)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, page pagination.Page) ([]Category, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	if id == 0 {
		return nil, faults.Invalidf("category id is not set")
	}
	return s.repo.GetByID(ctx, id)
}
