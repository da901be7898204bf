package compilations

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
)

type Service struct {
	repo   Repository
	events *events.Service
}

func NewService(repo Repository, eventSvc *events.Service) *Service {
	return &Service{repo: repo, events: eventSvc}
}

// Create adds a compilation. Event ids that do not resolve to stored
// events are dropped from the member set.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Compilation, error) {
	taken, err := s.repo.ExistsByTitle(ctx, params.Title)
	if err != nil {
		return nil, fmt.Errorf("check compilation title: %w", err)
	}
	if taken {
		return nil, faults.Conflictf("compilation title %q is already taken", params.Title)
	}

	members, err := s.resolveMembers(ctx, params.EventIDs)
	if err != nil {
		return nil, err
	}
	params.EventIDs = members

	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Compilation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if params.Title != nil {
		taken, err := s.repo.ExistsByTitleExcept(ctx, *params.Title, id)
		if err != nil {
			return nil, fmt.Errorf("check compilation title: %w", err)
		}
		if taken {
			return nil, faults.Conflictf("compilation title %q is already taken", *params.Title)
		}
	}
	if params.EventIDs != nil {
		members, err := s.resolveMembers(ctx, *params.EventIDs)
		if err != nil {
			return nil, err
		}
		params.EventIDs = &members
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, pinned *bool, page pagination.Page) ([]Compilation, error) {
	return s.repo.List(ctx, pinned, page)
}

func (s *Service) Get(ctx context.Context, id int64) (*Compilation, error) {
	if id == 0 {
		return nil, faults.Invalidf("compilation id is not set")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) resolveMembers(ctx context.Context, ids []int64) ([]int64, error) {
	found, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	members := make([]int64, 0, len(found))
	for _, event := range found {
		members = append(members, event.ID)
	}
	return members, nil
}
