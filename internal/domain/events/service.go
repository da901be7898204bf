package events

import (
	"context"
	"fmt"
	"time"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/afisha-events/server/internal/sanitize"
	"github.com/rs/zerolog"
)

const (
	// createLeadTime is the minimum gap between now and the event date
	// when an initiator creates or edits an event.
	createLeadTime = 2 * time.Hour
	// publishLeadTime is the minimum gap between publication and the
	// event date when an admin moderates an event.
	publishLeadTime = time.Hour
)

// StatsProvider records endpoint hits and returns aggregate view counts
// keyed by URI. Implemented by the statistics service client.
type StatsProvider interface {
	RecordHit(ctx context.Context, uri, ip string) error
	Views(ctx context.Context, uris []string) (map[string]int64, error)
}

type Service struct {
	repo       Repository
	categories *categories.Service
	users      *users.Service
	stats      StatsProvider
	logger     zerolog.Logger
}

func NewService(repo Repository, categorySvc *categories.Service, userSvc *users.Service, stats StatsProvider, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categorySvc,
		users:      userSvc,
		stats:      stats,
		logger:     logger.With().Str("component", "events").Logger(),
	}
}

// Patch carries a partial event update; nil fields are left untouched.
type Patch struct {
	Annotation        *string
	Description       *string
	Title             *string
	CategoryID        *int64
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int32
	RequestModeration *bool
}

type UserPatch struct {
	Patch
	StateAction *UserStateAction
}

type AdminPatch struct {
	Patch
	StateAction *AdminStateAction
}

// Create registers a new event in PENDING state.
func (s *Service) Create(ctx context.Context, initiatorID int64, params CreateParams) (*Event, error) {
	if err := validateLeadTime(params.EventDate, createLeadTime); err != nil {
		return nil, err
	}
	initiator, err := s.users.Get(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.Get(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	params.InitiatorID = initiator.ID
	params.Annotation = sanitize.Text(params.Annotation)
	params.Title = sanitize.Text(params.Title)
	params.Description = sanitize.HTML(params.Description)

	return s.repo.Create(ctx, params)
}

func (s *Service) ListByInitiator(ctx context.Context, userID int64, page pagination.Page) ([]Event, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByInitiator(ctx, userID, page)
}

func (s *Service) GetByInitiator(ctx context.Context, userID, eventID int64) (*Event, error) {
	return s.EnsureInitiator(ctx, eventID, userID)
}

// UpdateByInitiator applies a partial update on behalf of the event's
// initiator. Published events are immutable to the initiator.
func (s *Service) UpdateByInitiator(ctx context.Context, userID, eventID int64, patch UserPatch) (*Event, error) {
	event, err := s.EnsureInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if event.State == StatePublished {
		return nil, faults.Conflictf("published events cannot be edited by the initiator")
	}

	update, err := s.buildUpdate(ctx, patch.Patch, createLeadTime)
	if err != nil {
		return nil, err
	}
	if patch.StateAction != nil {
		next := patch.StateAction.Apply()
		update.State = &next
	}

	return s.repo.Update(ctx, eventID, update)
}

// UpdateByAdmin moderates a pending event: PUBLISH_EVENT (the default)
// publishes it, REJECT_EVENT cancels it.
func (s *Service) UpdateByAdmin(ctx context.Context, eventID int64, patch AdminPatch) (*Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != StatePending {
		return nil, faults.Conflictf("event %d is not pending moderation", eventID)
	}

	now := time.Now()
	if now.After(event.EventDate.Add(-publishLeadTime)) {
		return nil, faults.Invalidf("event date must be at least 1 hour after publication")
	}
	if patch.EventDate != nil && patch.EventDate.Before(now) {
		return nil, faults.Invalidf("event date cannot be in the past")
	}

	update, err := s.buildUpdate(ctx, patch.Patch, 0)
	if err != nil {
		return nil, err
	}

	action := ActionPublishEvent
	if patch.StateAction != nil {
		action = *patch.StateAction
	}
	next := action.Apply()
	update.State = &next
	if next == StatePublished {
		update.PublishedOn = &now
	}

	return s.repo.Update(ctx, eventID, update)
}

// GetPublished returns a published event, records the view as a hit against
// the statistics service and attaches the unique-view count.
func (s *Service) GetPublished(ctx context.Context, eventID int64, clientIP string) (*Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != StatePublished {
		return nil, faults.NotFoundf("event %d is not published yet", eventID)
	}

	s.recordHit(ctx, eventURI(event.ID), clientIP)
	s.attachViews(ctx, []*Event{event})
	return event, nil
}

// Search lists published events matching the public filters. The search
// itself counts as one hit against the /events endpoint.
func (s *Service) Search(ctx context.Context, filters PublicFilters, page pagination.Page, clientIP string) ([]Event, error) {
	if err := validateRange(filters.RangeStart, filters.RangeEnd); err != nil {
		return nil, err
	}

	found, err := s.repo.Search(ctx, filters, page)
	if err != nil {
		return nil, err
	}

	s.recordHit(ctx, "/events", clientIP)

	refs := make([]*Event, len(found))
	for i := range found {
		refs[i] = &found[i]
	}
	s.attachViews(ctx, refs)

	if filters.Sort == SortByViews {
		sortByViews(found)
	}
	return found, nil
}

// SearchAdmin lists events for the admin console, regardless of state.
func (s *Service) SearchAdmin(ctx context.Context, filters AdminFilters, page pagination.Page) ([]Event, error) {
	if err := validateRange(filters.RangeStart, filters.RangeEnd); err != nil {
		return nil, err
	}

	found, err := s.repo.SearchAdmin(ctx, filters, page)
	if err != nil {
		return nil, err
	}

	refs := make([]*Event, len(found))
	for i := range found {
		refs[i] = &found[i]
	}
	s.attachViews(ctx, refs)
	return found, nil
}

// FindByIDs fetches the listed events; ids absent from the store are
// silently skipped.
func (s *Service) FindByIDs(ctx context.Context, ids []int64) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	for _, id := range ids {
		if id == 0 {
			return nil, faults.Invalidf("event id is not set")
		}
	}
	return s.repo.ListByIDs(ctx, ids)
}

// Get looks up an event by id. A zero id is a validation error.
func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	if id == 0 {
		return nil, faults.Invalidf("event id is not set")
	}
	return s.repo.GetByID(ctx, id)
}

// EnsureInitiator returns the event after verifying that userID organized it.
func (s *Service) EnsureInitiator(ctx context.Context, eventID, userID int64) (*Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	if event.Initiator.ID != userID {
		return nil, faults.Conflictf("user %d is not the initiator of event %d", userID, eventID)
	}
	return event, nil
}

func (s *Service) buildUpdate(ctx context.Context, patch Patch, leadTime time.Duration) (UpdateParams, error) {
	var update UpdateParams

	if patch.EventDate != nil {
		if leadTime > 0 {
			if err := validateLeadTime(*patch.EventDate, leadTime); err != nil {
				return UpdateParams{}, err
			}
		}
		update.EventDate = patch.EventDate
	}
	if patch.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *patch.CategoryID); err != nil {
			return UpdateParams{}, err
		}
		update.CategoryID = patch.CategoryID
	}
	if patch.Annotation != nil {
		clean := sanitize.Text(*patch.Annotation)
		update.Annotation = &clean
	}
	if patch.Description != nil {
		clean := sanitize.HTML(*patch.Description)
		update.Description = &clean
	}
	if patch.Title != nil {
		clean := sanitize.Text(*patch.Title)
		update.Title = &clean
	}
	update.Location = patch.Location
	update.Paid = patch.Paid
	update.ParticipantLimit = patch.ParticipantLimit
	update.RequestModeration = patch.RequestModeration
	return update, nil
}

func (s *Service) recordHit(ctx context.Context, uri, ip string) {
	if err := s.stats.RecordHit(ctx, uri, ip); err != nil {
		s.logger.Warn().Err(err).Str("uri", uri).Msg("recording hit failed")
	}
}

// attachViews resolves view counts for the given events in one stats call.
// Lookup failures degrade to zero views: view counts are derived data and
// must not break reads.
func (s *Service) attachViews(ctx context.Context, events []*Event) {
	if len(events) == 0 {
		return
	}
	uris := make([]string, len(events))
	for i, event := range events {
		uris[i] = eventURI(event.ID)
	}

	views, err := s.stats.Views(ctx, uris)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fetching view counts failed")
		return
	}
	for _, event := range events {
		event.Views = views[eventURI(event.ID)]
	}
}

func eventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

func validateLeadTime(eventDate time.Time, lead time.Duration) error {
	if eventDate.Before(time.Now().Add(lead)) {
		return faults.Invalidf("event date must be at least %d hours in the future", int(lead.Hours()))
	}
	return nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return faults.Invalidf("range end must not be before range start")
	}
	return nil
}

func sortByViews(events []Event) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Views < events[j-1].Views; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}
