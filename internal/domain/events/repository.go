package events

import (
	"context"
	"time"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/users"
)

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID                int64
	Annotation        string
	Description       string
	Title             string
	Category          categories.Category
	Initiator         users.User
	Location          Location
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int32
	RequestModeration bool
	ConfirmedRequests int32
	State             State

	// Views is derived from the statistics service on read and never persisted.
	Views int64
}

type CreateParams struct {
	Annotation        string
	Description       string
	Title             string
	CategoryID        int64
	InitiatorID       int64
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int32
	RequestModeration bool
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Annotation        *string
	Description       *string
	Title             *string
	CategoryID        *int64
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int32
	RequestModeration *bool
	State             *State
	PublishedOn       *time.Time
}

type SortOption string

const (
	SortByEventDate SortOption = "EVENT_DATE"
	SortByViews     SortOption = "VIEWS"
)

// PublicFilters narrow the public event search. All filters are conjunctive.
type PublicFilters struct {
	// Text matches annotation or description, case-insensitively.
	Text       string
	Categories []int64
	Paid       *bool
	RangeStart *time.Time
	RangeEnd   *time.Time
	// OnlyAvailable keeps events with spare capacity:
	// participant_limit = 0 OR confirmed_requests < participant_limit.
	OnlyAvailable bool
	Sort          SortOption
}

// AdminFilters narrow the admin event listing.
type AdminFilters struct {
	Users      []int64
	States     []State
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, page pagination.Page) ([]Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Event, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Event, error)
	Search(ctx context.Context, filters PublicFilters, page pagination.Page) ([]Event, error)
	SearchAdmin(ctx context.Context, filters AdminFilters, page pagination.Page) ([]Event, error)
}
