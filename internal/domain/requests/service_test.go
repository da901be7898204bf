package requests

import (
	"context"
	"testing"
	"time"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[int64]users.User
}

func (s *stubUserRepo) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, faults.NotFoundf("user %d was not found", id)
	}
	return &user, nil
}

func (s *stubUserRepo) List(ctx context.Context, ids []int64, page pagination.Page) ([]users.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type stubCategoryRepo struct{}

func (s *stubCategoryRepo) Create(ctx context.Context, name string) (*categories.Category, error) {
	return nil, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, id int64, name string) (*categories.Category, error) {
	return nil, nil
}

func (s *stubCategoryRepo) GetByID(ctx context.Context, id int64) (*categories.Category, error) {
	return &categories.Category{ID: id, Name: "concerts"}, nil
}

func (s *stubCategoryRepo) List(ctx context.Context, page pagination.Page) ([]categories.Category, error) {
	return nil, nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubCategoryRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (s *stubCategoryRepo) ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error) {
	return false, nil
}

func (s *stubCategoryRepo) InUse(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

type stubEventRepo struct {
	events map[int64]events.Event
}

func (s *stubEventRepo) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	return nil, nil
}

func (s *stubEventRepo) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, faults.NotFoundf("event %d was not found", id)
	}
	return &event, nil
}

func (s *stubEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page pagination.Page) ([]events.Event, error) {
	return nil, nil
}

func (s *stubEventRepo) ListByIDs(ctx context.Context, ids []int64) ([]events.Event, error) {
	return nil, nil
}

func (s *stubEventRepo) Update(ctx context.Context, id int64, params events.UpdateParams) (*events.Event, error) {
	return nil, nil
}

func (s *stubEventRepo) Search(ctx context.Context, filters events.PublicFilters, page pagination.Page) ([]events.Event, error) {
	return nil, nil
}

func (s *stubEventRepo) SearchAdmin(ctx context.Context, filters events.AdminFilters, page pagination.Page) ([]events.Event, error) {
	return nil, nil
}

type noopStats struct{}

func (noopStats) RecordHit(ctx context.Context, uri, ip string) error { return nil }

func (noopStats) Views(ctx context.Context, uris []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type fakeRequestRepo struct {
	requests map[int64]Request
	nextID   int64
}

func (f *fakeRequestRepo) Create(ctx context.Context, params CreateParams) (*Request, error) {
	f.nextID++
	request := Request{
		ID:          f.nextID,
		Created:     time.Now(),
		EventID:     params.EventID,
		RequesterID: params.RequesterID,
		Status:      params.Status,
	}
	f.requests[request.ID] = request
	return &request, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, faults.NotFoundf("request %d was not found", id)
	}
	return &request, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	var found []Request
	for _, request := range f.requests {
		if request.RequesterID == requesterID {
			found = append(found, request)
		}
	}
	return found, nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]Request, error) {
	var found []Request
	for _, request := range f.requests {
		if request.EventID == eventID {
			found = append(found, request)
		}
	}
	return found, nil
}

func (f *fakeRequestRepo) HasActive(ctx context.Context, eventID, requesterID int64) (bool, error) {
	for _, request := range f.requests {
		if request.EventID == eventID && request.RequesterID == requesterID && request.Status != StatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) Cancel(ctx context.Context, id int64) (*Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, faults.NotFoundf("request %d was not found", id)
	}
	request.Status = StatusCanceled
	f.requests[id] = request
	return &request, nil
}

func (f *fakeRequestRepo) UpdateStatuses(ctx context.Context, eventID int64, ids []int64, status Status) ([]Request, error) {
	var updated []Request
	for _, id := range ids {
		request, ok := f.requests[id]
		if !ok || request.EventID != eventID {
			continue
		}
		if request.Status != StatusPending {
			return nil, faults.Conflictf("request %d is not pending", id)
		}
		request.Status = status
		f.requests[id] = request
		updated = append(updated, request)
	}
	return updated, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRequestRepo
	eventRepo *stubEventRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userRepo := &stubUserRepo{users: map[int64]users.User{
		1: {ID: 1, Name: "organizer"},
		2: {ID: 2, Name: "visitor"},
		3: {ID: 3, Name: "another visitor"},
	}}
	eventRepo := &stubEventRepo{events: map[int64]events.Event{
		10: {
			ID:                10,
			Initiator:         users.User{ID: 1},
			State:             events.StatePublished,
			RequestModeration: true,
			ParticipantLimit:  2,
		},
	}}
	requestRepo := &fakeRequestRepo{requests: map[int64]Request{}}

	userSvc := users.NewService(userRepo)
	eventSvc := events.NewService(eventRepo, categories.NewService(&stubCategoryRepo{}), userSvc, noopStats{}, zerolog.Nop())

	return &fixture{
		svc:       NewService(requestRepo, eventSvc, userSvc),
		repo:      requestRepo,
		eventRepo: eventRepo,
	}
}

func (f *fixture) setEvent(mutate func(*events.Event)) {
	event := f.eventRepo.events[10]
	mutate(&event)
	f.eventRepo.events[10] = event
}

func TestAddPendingUnderModeration(t *testing.T) {
	f := newFixture(t)

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, StatusPending, request.Status)
}

func TestAddAutoConfirmsWithoutModeration(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(e *events.Event) { e.RequestModeration = false })

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, request.Status)
}

func TestAddAutoConfirmsWithoutLimit(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(e *events.Event) { e.ParticipantLimit = 0 })

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, request.Status)
}

func TestAddRejectsInitiator(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), 1, 10)
	require.True(t, faults.IsConflict(err))
}

func TestAddRejectsUnpublishedEvent(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(e *events.Event) { e.State = events.StatePending })

	_, err := f.svc.Add(context.Background(), 2, 10)
	require.True(t, faults.IsConflict(err))
}

func TestAddRejectsDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = f.svc.Add(context.Background(), 2, 10)
	require.True(t, faults.IsConflict(err))
}

func TestAddAllowsAfterCancel(t *testing.T) {
	f := newFixture(t)

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), 2, request.ID)
	require.NoError(t, err)

	_, err = f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)
}

func TestAddRejectsSoldOut(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(e *events.Event) {
		e.RequestModeration = false
		e.ParticipantLimit = 1
		e.ConfirmedRequests = 1
	})

	_, err := f.svc.Add(context.Background(), 2, 10)
	require.True(t, faults.IsConflict(err))
}

func TestCancelRequiresOwnership(t *testing.T) {
	f := newFixture(t)

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), 3, request.ID)
	require.True(t, faults.IsConflict(err))
}

func TestModerateSplitsResult(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)
	second, err := f.svc.Add(context.Background(), 3, 10)
	require.NoError(t, err)

	result, err := f.svc.Moderate(context.Background(), 1, 10, []int64{first.ID}, StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, result.Confirmed, 1)
	require.Empty(t, result.Rejected)

	result, err = f.svc.Moderate(context.Background(), 1, 10, []int64{second.ID}, StatusRejected)
	require.NoError(t, err)
	require.Empty(t, result.Confirmed)
	require.Len(t, result.Rejected, 1)
}

func TestModerateRejectsInvalidStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Moderate(context.Background(), 1, 10, []int64{1}, StatusCanceled)
	require.True(t, faults.IsConflict(err))
}

func TestModerateRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(e *events.Event) {
		e.ParticipantLimit = 2
		e.ConfirmedRequests = 2
	})

	_, err := f.svc.Moderate(context.Background(), 1, 10, []int64{1}, StatusConfirmed)
	require.True(t, faults.IsConflict(err))
}

func TestModerateRejectsAlreadyConfirmed(t *testing.T) {
	f := newFixture(t)

	request, err := f.svc.Add(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = f.svc.Moderate(context.Background(), 1, 10, []int64{request.ID}, StatusConfirmed)
	require.NoError(t, err)

	_, err = f.svc.Moderate(context.Background(), 1, 10, []int64{request.ID}, StatusRejected)
	require.True(t, faults.IsConflict(err))
}

func TestModerateRequiresOwnership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Moderate(context.Background(), 2, 10, []int64{1}, StatusConfirmed)
	require.True(t, faults.IsConflict(err))
}

func TestModerateRejectsZeroID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Moderate(context.Background(), 1, 10, []int64{0}, StatusConfirmed)
	require.True(t, faults.IsValidation(err))
}
