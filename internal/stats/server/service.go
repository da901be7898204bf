// Package server implements the statistics service: it records endpoint
// hits and serves aggregate view counts.
package server

import (
	"context"
	"time"

	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/stats"
)

// Filters narrow a view-count query. Hits outside [Start, End] are
// excluded; an empty URIs slice matches every endpoint.
type Filters struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

type Repository interface {
	SaveHit(ctx context.Context, hit stats.Hit) error
	// CountViews aggregates hits by app and uri, most viewed first.
	CountViews(ctx context.Context, filters Filters) ([]stats.ViewCount, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) RecordHit(ctx context.Context, hit stats.Hit) error {
	if hit.App == "" {
		return faults.Invalidf("hit app is not set")
	}
	if hit.URI == "" {
		return faults.Invalidf("hit uri is not set")
	}
	if hit.IP == "" {
		return faults.Invalidf("hit ip is not set")
	}
	return s.repo.SaveHit(ctx, hit)
}

func (s *Service) Views(ctx context.Context, filters Filters) ([]stats.ViewCount, error) {
	if filters.Start.IsZero() || filters.End.IsZero() {
		return nil, faults.Invalidf("start and end are required")
	}
	if filters.End.Before(filters.Start) {
		return nil, faults.Invalidf("range end must not be before range start")
	}
	return s.repo.CountViews(ctx, filters)
}
