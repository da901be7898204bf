package requests

import (
	"context"

	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
)

type Service struct {
	repo   Repository
	events *events.Service
	users  *users.Service
}

func NewService(repo Repository, eventSvc *events.Service, userSvc *users.Service) *Service {
	return &Service{repo: repo, events: eventSvc, users: userSvc}
}

// Add files a participation request. The request is confirmed immediately
// when the event skips moderation or has no participant limit.
func (s *Service) Add(ctx context.Context, userID, eventID int64) (*Request, error) {
	requester, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Initiator.ID == requester.ID {
		return nil, faults.Conflictf("initiator cannot request participation in own event %d", eventID)
	}
	if event.State != events.StatePublished {
		return nil, faults.Conflictf("event %d is not published", eventID)
	}

	active, err := s.repo.HasActive(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, faults.Conflictf("user %d already requested participation in event %d", userID, eventID)
	}
	// With moderation off a full event cannot accept more requests;
	// with moderation on the request waits in PENDING instead.
	if !event.RequestModeration && event.ParticipantLimit > 0 && event.ConfirmedRequests >= event.ParticipantLimit {
		return nil, faults.Conflictf("the participant limit of event %d has been reached", eventID)
	}

	status := StatusPending
	if !event.RequestModeration || event.ParticipantLimit == 0 {
		status = StatusConfirmed
	}

	return s.repo.Create(ctx, CreateParams{
		EventID:     eventID,
		RequesterID: userID,
		Status:      status,
	})
}

// ListOwn returns the user's requests to participate in other users' events.
func (s *Service) ListOwn(ctx context.Context, userID int64) ([]Request, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByRequester(ctx, userID)
}

// ListForEvent returns all requests for an event owned by userID.
func (s *Service) ListForEvent(ctx context.Context, userID, eventID int64) ([]Request, error) {
	if _, err := s.events.EnsureInitiator(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// Cancel withdraws the user's own request.
func (s *Service) Cancel(ctx context.Context, userID, requestID int64) (*Request, error) {
	if requestID == 0 {
		return nil, faults.Invalidf("request id is not set")
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != userID {
		return nil, faults.Conflictf("request %d does not belong to user %d", requestID, userID)
	}
	return s.repo.Cancel(ctx, requestID)
}

// ModerationResult splits the requests touched by a moderation call.
type ModerationResult struct {
	Confirmed []Request
	Rejected  []Request
}

// Moderate confirms or rejects pending requests for an event owned by userID.
func (s *Service) Moderate(ctx context.Context, userID, eventID int64, ids []int64, status Status) (*ModerationResult, error) {
	if status != StatusConfirmed && status != StatusRejected {
		return nil, faults.Conflictf("moderation status must be CONFIRMED or REJECTED, got %q", status)
	}
	for _, id := range ids {
		if id == 0 {
			return nil, faults.Invalidf("request id is not set")
		}
	}

	event, err := s.events.EnsureInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	if status == StatusConfirmed && event.ParticipantLimit > 0 {
		if event.ConfirmedRequests+int32(len(ids)) > event.ParticipantLimit {
			return nil, faults.Conflictf("the participant limit of event %d has been reached", eventID)
		}
	}

	updated, err := s.repo.UpdateStatuses(ctx, eventID, ids, status)
	if err != nil {
		return nil, err
	}

	result := &ModerationResult{}
	for _, request := range updated {
		switch request.Status {
		case StatusConfirmed:
			result.Confirmed = append(result.Confirmed, request)
		case StatusRejected:
			result.Rejected = append(result.Rejected, request)
		}
	}
	return result, nil
}
