package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/compilations"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/afisha-events/server/internal/domain/users"
)

// DateTimeLayout is the wire format for all timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime marshals as DateTimeLayout instead of RFC 3339.
type DateTime time.Time

func (t DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(DateTimeLayout) + `"`), nil
}

func (t *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := time.Parse(DateTimeLayout, raw)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	*t = DateTime(parsed)
	return nil
}

func (t DateTime) Time() time.Time {
	return time.Time(t)
}

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserShortView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LocationView struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type EventFullView struct {
	ID                int64         `json:"id"`
	Annotation        string        `json:"annotation"`
	Category          CategoryView  `json:"category"`
	ConfirmedRequests int32         `json:"confirmedRequests"`
	CreatedOn         DateTime      `json:"createdOn"`
	Description       string        `json:"description"`
	EventDate         DateTime      `json:"eventDate"`
	Initiator         UserShortView `json:"initiator"`
	Location          LocationView  `json:"location"`
	Paid              bool          `json:"paid"`
	ParticipantLimit  int32         `json:"participantLimit"`
	PublishedOn       *DateTime     `json:"publishedOn,omitempty"`
	RequestModeration bool          `json:"requestModeration"`
	State             string        `json:"state"`
	Title             string        `json:"title"`
	Views             int64         `json:"views"`
}

type EventShortView struct {
	ID                int64         `json:"id"`
	Annotation        string        `json:"annotation"`
	Category          CategoryView  `json:"category"`
	ConfirmedRequests int32         `json:"confirmedRequests"`
	EventDate         DateTime      `json:"eventDate"`
	Initiator         UserShortView `json:"initiator"`
	Paid              bool          `json:"paid"`
	Title             string        `json:"title"`
	Views             int64         `json:"views"`
}

type RequestView struct {
	ID        int64    `json:"id"`
	Created   DateTime `json:"created"`
	Event     int64    `json:"event"`
	Requester int64    `json:"requester"`
	Status    string   `json:"status"`
}

type CompilationView struct {
	ID     int64            `json:"id"`
	Title  string           `json:"title"`
	Pinned bool             `json:"pinned"`
	Events []EventShortView `json:"events"`
}

func toUserView(user users.User) UserView {
	return UserView{ID: user.ID, Name: user.Name, Email: user.Email}
}

func toUserViews(found []users.User) []UserView {
	views := make([]UserView, len(found))
	for i, user := range found {
		views[i] = toUserView(user)
	}
	return views
}

func toUserShortView(user users.User) UserShortView {
	return UserShortView{ID: user.ID, Name: user.Name}
}

func toUserShortViews(found []users.User) []UserShortView {
	views := make([]UserShortView, len(found))
	for i, user := range found {
		views[i] = toUserShortView(user)
	}
	return views
}

func toCategoryView(category categories.Category) CategoryView {
	return CategoryView{ID: category.ID, Name: category.Name}
}

func toCategoryViews(found []categories.Category) []CategoryView {
	views := make([]CategoryView, len(found))
	for i, category := range found {
		views[i] = toCategoryView(category)
	}
	return views
}

func toEventFullView(event *events.Event) EventFullView {
	view := EventFullView{
		ID:                event.ID,
		Annotation:        event.Annotation,
		Category:          toCategoryView(event.Category),
		ConfirmedRequests: event.ConfirmedRequests,
		CreatedOn:         DateTime(event.CreatedOn),
		Description:       event.Description,
		EventDate:         DateTime(event.EventDate),
		Initiator:         toUserShortView(event.Initiator),
		Location:          LocationView{Lat: event.Location.Lat, Lon: event.Location.Lon},
		Paid:              event.Paid,
		ParticipantLimit:  event.ParticipantLimit,
		RequestModeration: event.RequestModeration,
		State:             string(event.State),
		Title:             event.Title,
		Views:             event.Views,
	}
	if event.PublishedOn != nil {
		published := DateTime(*event.PublishedOn)
		view.PublishedOn = &published
	}
	return view
}

func toEventFullViews(found []events.Event) []EventFullView {
	views := make([]EventFullView, len(found))
	for i := range found {
		views[i] = toEventFullView(&found[i])
	}
	return views
}

func toEventShortView(event *events.Event) EventShortView {
	return EventShortView{
		ID:                event.ID,
		Annotation:        event.Annotation,
		Category:          toCategoryView(event.Category),
		ConfirmedRequests: event.ConfirmedRequests,
		EventDate:         DateTime(event.EventDate),
		Initiator:         toUserShortView(event.Initiator),
		Paid:              event.Paid,
		Title:             event.Title,
		Views:             event.Views,
	}
}

func toEventShortViews(found []events.Event) []EventShortView {
	views := make([]EventShortView, len(found))
	for i := range found {
		views[i] = toEventShortView(&found[i])
	}
	return views
}

func toRequestView(request requests.Request) RequestView {
	return RequestView{
		ID:        request.ID,
		Created:   DateTime(request.Created),
		Event:     request.EventID,
		Requester: request.RequesterID,
		Status:    string(request.Status),
	}
}

func toRequestViews(found []requests.Request) []RequestView {
	views := make([]RequestView, len(found))
	for i, request := range found {
		views[i] = toRequestView(request)
	}
	return views
}

func toCompilationView(compilation *compilations.Compilation) CompilationView {
	return CompilationView{
		ID:     compilation.ID,
		Title:  compilation.Title,
		Pinned: compilation.Pinned,
		Events: toEventShortViews(compilation.Events),
	}
}

func toCompilationViews(found []compilations.Compilation) []CompilationView {
	views := make([]CompilationView, len(found))
	for i := range found {
		views[i] = toCompilationView(&found[i])
	}
	return views
}
