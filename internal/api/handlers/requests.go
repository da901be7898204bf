package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/requests"
)

type RequestHandler struct {
	svc *requests.Service
}

func NewRequestHandler(svc *requests.Service) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /users/{userId}/requests", h.add)
	mux.HandleFunc("GET /users/{userId}/requests", h.listOwn)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", h.cancel)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", h.listForEvent)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", h.moderate)
}

func (h *RequestHandler) add(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}
	eventID, err := queryID(r.URL.Query().Get("eventId"), "eventId")
	if err != nil {
		fail(w, r, err)
		return
	}

	request, err := h.svc.Add(r.Context(), userID, eventID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRequestView(*request))
}

func (h *RequestHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.ListOwn(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRequestViews(found))
}

func (h *RequestHandler) cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		fail(w, r, err)
		return
	}

	request, err := h.svc.Cancel(r.Context(), userID, requestID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRequestView(*request))
}

func (h *RequestHandler) listForEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userEventIDs(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRequestViews(found))
}

type ModerationRequest struct {
	RequestIDs []int64 `json:"requestIds" validate:"required,min=1"`
	Status     string  `json:"status" validate:"required"`
}

type ModerationResultView struct {
	ConfirmedRequests []RequestView `json:"confirmedRequests"`
	RejectedRequests  []RequestView `json:"rejectedRequests"`
}

func (h *RequestHandler) moderate(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userEventIDs(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var body ModerationRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	status, err := requests.ParseStatus(body.Status)
	if err != nil {
		fail(w, r, err)
		return
	}

	result, err := h.svc.Moderate(r.Context(), userID, eventID, body.RequestIDs, status)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ModerationResultView{
		ConfirmedRequests: toRequestViews(result.Confirmed),
		RejectedRequests:  toRequestViews(result.Rejected),
	})
}

// queryID parses a required positive integer query parameter.
func queryID(value, name string) (int64, error) {
	ids, err := queryIDs([]string{value}, name)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 || ids[0] <= 0 {
		return 0, faults.Invalidf("%s must be a single positive integer", name)
	}
	return ids[0], nil
}
