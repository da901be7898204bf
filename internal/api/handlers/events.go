package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
)

type EventHandler struct {
	svc *events.Service
}

func NewEventHandler(svc *events.Service) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /events", h.search)
	mux.HandleFunc("GET /events/{eventId}", h.getPublished)
	mux.HandleFunc("POST /users/{userId}/events", h.create)
	mux.HandleFunc("GET /users/{userId}/events", h.listOwn)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", h.getOwn)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", h.updateOwn)
	mux.HandleFunc("GET /admin/events", h.searchAdmin)
	mux.HandleFunc("PATCH /admin/events/{eventId}", h.updateAdmin)
}

type NewEventRequest struct {
	Annotation        string        `json:"annotation" validate:"required,min=20,max=2000"`
	Category          int64         `json:"category" validate:"required,gt=0"`
	Description       string        `json:"description" validate:"required,min=20,max=7000"`
	EventDate         DateTime      `json:"eventDate" validate:"required"`
	Location          *LocationView `json:"location" validate:"required"`
	Paid              *bool         `json:"paid"`
	ParticipantLimit  *int32        `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool         `json:"requestModeration"`
	Title             string        `json:"title" validate:"required,min=3,max=120"`
}

type UpdateEventRequest struct {
	Annotation        *string       `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Category          *int64        `json:"category" validate:"omitempty,gt=0"`
	Description       *string       `json:"description" validate:"omitempty,min=20,max=7000"`
	EventDate         *DateTime     `json:"eventDate"`
	Location          *LocationView `json:"location"`
	Paid              *bool         `json:"paid"`
	ParticipantLimit  *int32        `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool         `json:"requestModeration"`
	StateAction       *string       `json:"stateAction"`
	Title             *string       `json:"title" validate:"omitempty,min=3,max=120"`
}

func (u UpdateEventRequest) toPatch() events.Patch {
	patch := events.Patch{
		Annotation:        u.Annotation,
		Description:       u.Description,
		Title:             u.Title,
		CategoryID:        u.Category,
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
	}
	if u.EventDate != nil {
		date := u.EventDate.Time()
		patch.EventDate = &date
	}
	if u.Location != nil {
		patch.Location = &events.Location{Lat: u.Location.Lat, Lon: u.Location.Lon}
	}
	return patch
}

func (h *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body NewEventRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	params := events.CreateParams{
		Annotation:        body.Annotation,
		Description:       body.Description,
		Title:             body.Title,
		CategoryID:        body.Category,
		Location:          events.Location{Lat: body.Location.Lat, Lon: body.Location.Lon},
		EventDate:         body.EventDate.Time(),
		RequestModeration: true,
	}
	if body.Paid != nil {
		params.Paid = *body.Paid
	}
	if body.ParticipantLimit != nil {
		params.ParticipantLimit = *body.ParticipantLimit
	}
	if body.RequestModeration != nil {
		params.RequestModeration = *body.RequestModeration
	}

	event, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEventFullView(event))
}

func (h *EventHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.ListByInitiator(r.Context(), userID, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventShortViews(found))
}

func (h *EventHandler) getOwn(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userEventIDs(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	event, err := h.svc.GetByInitiator(r.Context(), userID, eventID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventFullView(event))
}

func (h *EventHandler) updateOwn(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userEventIDs(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var body UpdateEventRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	patch := events.UserPatch{Patch: body.toPatch()}
	if body.StateAction != nil {
		action, err := events.ParseUserStateAction(*body.StateAction)
		if err != nil {
			fail(w, r, err)
			return
		}
		patch.StateAction = &action
	}

	event, err := h.svc.UpdateByInitiator(r.Context(), userID, eventID, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventFullView(event))
}

func (h *EventHandler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body UpdateEventRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	patch := events.AdminPatch{Patch: body.toPatch()}
	if body.StateAction != nil {
		action, err := events.ParseAdminStateAction(*body.StateAction)
		if err != nil {
			fail(w, r, err)
			return
		}
		patch.StateAction = &action
	}

	event, err := h.svc.UpdateByAdmin(r.Context(), eventID, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventFullView(event))
}

func (h *EventHandler) getPublished(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		fail(w, r, err)
		return
	}

	event, err := h.svc.GetPublished(r.Context(), eventID, clientIP(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventFullView(event))
}

func (h *EventHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := pagination.Parse(query)
	if err != nil {
		fail(w, r, err)
		return
	}

	filters := events.PublicFilters{
		Text: query.Get("text"),
		Sort: events.SortByEventDate,
	}
	if filters.Categories, err = queryIDs(query["categories"], "categories"); err != nil {
		fail(w, r, err)
		return
	}
	if filters.Paid, err = queryBool(query.Get("paid"), "paid"); err != nil {
		fail(w, r, err)
		return
	}
	if filters.RangeStart, err = queryTime(query.Get("rangeStart"), "rangeStart"); err != nil {
		fail(w, r, err)
		return
	}
	if filters.RangeEnd, err = queryTime(query.Get("rangeEnd"), "rangeEnd"); err != nil {
		fail(w, r, err)
		return
	}
	if query.Get("onlyAvailable") == "true" {
		filters.OnlyAvailable = true
	}
	switch sort := query.Get("sort"); sort {
	case "", string(events.SortByEventDate):
	case string(events.SortByViews):
		filters.Sort = events.SortByViews
	default:
		fail(w, r, faults.Invalidf("unknown sort option %q", sort))
		return
	}

	found, err := h.svc.Search(r.Context(), filters, page, clientIP(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventShortViews(found))
}

func (h *EventHandler) searchAdmin(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := pagination.Parse(query)
	if err != nil {
		fail(w, r, err)
		return
	}

	var filters events.AdminFilters
	if filters.Users, err = queryIDs(query["users"], "users"); err != nil {
		fail(w, r, err)
		return
	}
	if filters.Categories, err = queryIDs(query["categories"], "categories"); err != nil {
		fail(w, r, err)
		return
	}
	for _, raw := range query["states"] {
		state, err := events.ParseState(raw)
		if err != nil {
			fail(w, r, err)
			return
		}
		filters.States = append(filters.States, state)
	}
	if filters.RangeStart, err = queryTime(query.Get("rangeStart"), "rangeStart"); err != nil {
		fail(w, r, err)
		return
	}
	if filters.RangeEnd, err = queryTime(query.Get("rangeEnd"), "rangeEnd"); err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.SearchAdmin(r.Context(), filters, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventFullViews(found))
}

func userEventIDs(r *http.Request) (userID, eventID int64, err error) {
	if userID, err = pathID(r, "userId"); err != nil {
		return 0, 0, err
	}
	if eventID, err = pathID(r, "eventId"); err != nil {
		return 0, 0, err
	}
	return userID, eventID, nil
}
