package events

import (
	"context"
	"testing"
	"time"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int64]users.User
}

func (f *fakeUserRepo) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	user := users.User{ID: int64(len(f.users) + 1), Name: params.Name, Email: params.Email}
	f.users[user.ID] = user
	return &user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, faults.NotFoundf("user %d was not found", id)
	}
	return &user, nil
}

func (f *fakeUserRepo) List(ctx context.Context, ids []int64, page pagination.Page) ([]users.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type fakeCategoryRepo struct {
	categories map[int64]categories.Category
}

func (f *fakeCategoryRepo) Create(ctx context.Context, name string) (*categories.Category, error) {
	category := categories.Category{ID: int64(len(f.categories) + 1), Name: name}
	f.categories[category.ID] = category
	return &category, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, id int64, name string) (*categories.Category, error) {
	category := categories.Category{ID: id, Name: name}
	f.categories[id] = category
	return &category, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*categories.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, faults.NotFoundf("category %d was not found", id)
	}
	return &category, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context, page pagination.Page) ([]categories.Category, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (f *fakeCategoryRepo) ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error) {
	return false, nil
}

func (f *fakeCategoryRepo) InUse(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

type fakeEventRepo struct {
	events map[int64]Event
	nextID int64
}

func (f *fakeEventRepo) Create(ctx context.Context, params CreateParams) (*Event, error) {
	f.nextID++
	event := Event{
		ID:                f.nextID,
		Annotation:        params.Annotation,
		Description:       params.Description,
		Title:             params.Title,
		Category:          categories.Category{ID: params.CategoryID},
		Initiator:         users.User{ID: params.InitiatorID},
		Location:          params.Location,
		EventDate:         params.EventDate,
		CreatedOn:         time.Now(),
		Paid:              params.Paid,
		ParticipantLimit:  params.ParticipantLimit,
		RequestModeration: params.RequestModeration,
		State:             StatePending,
	}
	f.events[event.ID] = event
	return &event, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, faults.NotFoundf("event %d was not found", id)
	}
	return &event, nil
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page pagination.Page) ([]Event, error) {
	var found []Event
	for _, event := range f.events {
		if event.Initiator.ID == initiatorID {
			found = append(found, event)
		}
	}
	return found, nil
}

func (f *fakeEventRepo) ListByIDs(ctx context.Context, ids []int64) ([]Event, error) {
	var found []Event
	for _, id := range ids {
		if event, ok := f.events[id]; ok {
			found = append(found, event)
		}
	}
	return found, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id int64, params UpdateParams) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, faults.NotFoundf("event %d was not found", id)
	}
	if params.Annotation != nil {
		event.Annotation = *params.Annotation
	}
	if params.Description != nil {
		event.Description = *params.Description
	}
	if params.Title != nil {
		event.Title = *params.Title
	}
	if params.CategoryID != nil {
		event.Category = categories.Category{ID: *params.CategoryID}
	}
	if params.Location != nil {
		event.Location = *params.Location
	}
	if params.EventDate != nil {
		event.EventDate = *params.EventDate
	}
	if params.Paid != nil {
		event.Paid = *params.Paid
	}
	if params.ParticipantLimit != nil {
		event.ParticipantLimit = *params.ParticipantLimit
	}
	if params.RequestModeration != nil {
		event.RequestModeration = *params.RequestModeration
	}
	if params.State != nil {
		event.State = *params.State
	}
	if params.PublishedOn != nil {
		event.PublishedOn = params.PublishedOn
	}
	f.events[id] = event
	return &event, nil
}

func (f *fakeEventRepo) Search(ctx context.Context, filters PublicFilters, page pagination.Page) ([]Event, error) {
	var found []Event
	for _, event := range f.events {
		if event.State == StatePublished {
			found = append(found, event)
		}
	}
	return found, nil
}

func (f *fakeEventRepo) SearchAdmin(ctx context.Context, filters AdminFilters, page pagination.Page) ([]Event, error) {
	var found []Event
	for _, event := range f.events {
		found = append(found, event)
	}
	return found, nil
}

type fakeStats struct {
	hits  []string
	views map[string]int64
}

func (f *fakeStats) RecordHit(ctx context.Context, uri, ip string) error {
	f.hits = append(f.hits, uri)
	return nil
}

func (f *fakeStats) Views(ctx context.Context, uris []string) (map[string]int64, error) {
	return f.views, nil
}

type fixture struct {
	svc    *Service
	repo   *fakeEventRepo
	stats  *fakeStats
	userID int64
	catID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userRepo := &fakeUserRepo{users: map[int64]users.User{
		1: {ID: 1, Name: "organizer", Email: "organizer@example.com"},
		2: {ID: 2, Name: "visitor", Email: "visitor@example.com"},
	}}
	categoryRepo := &fakeCategoryRepo{categories: map[int64]categories.Category{
		1: {ID: 1, Name: "concerts"},
	}}
	eventRepo := &fakeEventRepo{events: map[int64]Event{}}
	stats := &fakeStats{views: map[string]int64{}}

	svc := NewService(
		eventRepo,
		categories.NewService(categoryRepo),
		users.NewService(userRepo),
		stats,
		zerolog.Nop(),
	)
	return &fixture{svc: svc, repo: eventRepo, stats: stats, userID: 1, catID: 1}
}

func validCreateParams(eventDate time.Time) CreateParams {
	return CreateParams{
		Annotation:        "An annotation long enough to pass validation",
		Description:       "A description long enough to pass validation",
		Title:             "Spring concert",
		CategoryID:        1,
		Location:          Location{Lat: 55.75, Lon: 37.62},
		EventDate:         eventDate,
		RequestModeration: true,
	}
}

func TestCreateRejectsNearEventDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(time.Hour)))
	require.True(t, faults.IsValidation(err))
}

func TestCreateStartsPending(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)
	require.Equal(t, StatePending, event.State)
	require.Nil(t, event.PublishedOn)
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	params := validCreateParams(time.Now().Add(3 * time.Hour))
	params.CategoryID = 42
	_, err := f.svc.Create(context.Background(), f.userID, params)
	require.True(t, faults.IsNotFound(err))
}

func TestUpdateByInitiatorRejectsPublished(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	published := StatePublished
	_, err = f.repo.Update(context.Background(), event.ID, UpdateParams{State: &published})
	require.NoError(t, err)

	_, err = f.svc.UpdateByInitiator(context.Background(), f.userID, event.ID, UserPatch{})
	require.True(t, faults.IsConflict(err))
}

func TestUpdateByInitiatorRejectsForeignEvent(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.UpdateByInitiator(context.Background(), 2, event.ID, UserPatch{})
	require.True(t, faults.IsConflict(err))
}

func TestUpdateByInitiatorCancelReview(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	action := ActionCancelReview
	updated, err := f.svc.UpdateByInitiator(context.Background(), f.userID, event.ID, UserPatch{StateAction: &action})
	require.NoError(t, err)
	require.Equal(t, StateCanceled, updated.State)

	action = ActionSendToReview
	updated, err = f.svc.UpdateByInitiator(context.Background(), f.userID, event.ID, UserPatch{StateAction: &action})
	require.NoError(t, err)
	require.Equal(t, StatePending, updated.State)
}

func TestUpdateByAdminPublishSetsPublishedOn(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	updated, err := f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{})
	require.NoError(t, err)
	require.Equal(t, StatePublished, updated.State)
	require.NotNil(t, updated.PublishedOn)
}

func TestUpdateByAdminRejectLeavesPublishedOnEmpty(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	action := ActionRejectEvent
	updated, err := f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{StateAction: &action})
	require.NoError(t, err)
	require.Equal(t, StateCanceled, updated.State)
	require.Nil(t, updated.PublishedOn)
}

func TestUpdateByAdminRequiresPending(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{})
	require.NoError(t, err)

	_, err = f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{})
	require.True(t, faults.IsConflict(err))
}

func TestUpdateByAdminRejectsImminentEvent(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	soon := time.Now().Add(30 * time.Minute)
	_, err = f.repo.Update(context.Background(), event.ID, UpdateParams{EventDate: &soon})
	require.NoError(t, err)

	_, err = f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{})
	require.True(t, faults.IsValidation(err))
}

func TestGetPublishedHidesPendingEvents(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.GetPublished(context.Background(), event.ID, "10.0.0.1")
	require.True(t, faults.IsNotFound(err))
}

func TestGetPublishedRecordsHitAndViews(t *testing.T) {
	f := newFixture(t)

	event, err := f.svc.Create(context.Background(), f.userID, validCreateParams(time.Now().Add(3*time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.UpdateByAdmin(context.Background(), event.ID, AdminPatch{})
	require.NoError(t, err)

	f.stats.views[eventURI(event.ID)] = 7

	got, err := f.svc.GetPublished(context.Background(), event.ID, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Views)
	require.Equal(t, []string{eventURI(event.ID)}, f.stats.hits)
}

func TestSearchValidatesRange(t *testing.T) {
	f := newFixture(t)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := f.svc.Search(context.Background(), PublicFilters{RangeStart: &start, RangeEnd: &end}, pagination.Page{Size: 10}, "10.0.0.1")
	require.True(t, faults.IsValidation(err))
}

func TestSearchRecordsOneHit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Search(context.Background(), PublicFilters{}, pagination.Page{Size: 10}, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, []string{"/events"}, f.stats.hits)
}

func TestFindByIDsRejectsZeroID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.FindByIDs(context.Background(), []int64{1, 0})
	require.True(t, faults.IsValidation(err))
}

func TestSortByViewsOrdersAscending(t *testing.T) {
	found := []Event{{ID: 1, Views: 5}, {ID: 2, Views: 1}, {ID: 3, Views: 3}}
	sortByViews(found)
	require.Equal(t, int64(1), found[0].Views)
	require.Equal(t, int64(3), found[1].Views)
	require.Equal(t, int64(5), found[2].Views)
}

func TestParseStateActions(t *testing.T) {
	_, err := ParseUserStateAction("PUBLISH_EVENT")
	require.True(t, faults.IsConflict(err))

	action, err := ParseAdminStateAction("REJECT_EVENT")
	require.NoError(t, err)
	require.Equal(t, StateCanceled, action.Apply())

	_, err = ParseState("DRAFT")
	require.True(t, faults.IsValidation(err))
}
