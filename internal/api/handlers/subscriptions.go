package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/subscriptions"
)

type SubscriptionHandler struct {
	svc *subscriptions.Service
}

func NewSubscriptionHandler(svc *subscriptions.Service) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /subscriptions", h.subscribe)
	mux.HandleFunc("DELETE /subscriptions", h.unsubscribe)
	mux.HandleFunc("GET /subscriptions", h.listSubscriptions)
	mux.HandleFunc("GET /subscriptions/{userId}", h.listSubscribers)
}

func (h *SubscriptionHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	userID, subscriberID, err := subscriptionPair(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.Subscribe(r.Context(), subscriberID, userID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *SubscriptionHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, subscriberID, err := subscriptionPair(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.Unsubscribe(r.Context(), subscriberID, userID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listSubscriptions returns the users the subscriber follows.
func (h *SubscriptionHandler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := queryID(r.URL.Query().Get("subscriberId"), "subscriberId")
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.Subscriptions(r.Context(), subscriberID, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserShortViews(found))
}

// listSubscribers returns the followers of a user.
func (h *SubscriptionHandler) listSubscribers(w http.ResponseWriter, r *http.Request) {
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

	found, err := h.svc.Subscribers(r.Context(), userID, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserShortViews(found))
}

func subscriptionPair(r *http.Request) (userID, subscriberID int64, err error) {
	query := r.URL.Query()
	if userID, err = queryID(query.Get("userId"), "userId"); err != nil {
		return 0, 0, err
	}
	if subscriberID, err = queryID(query.Get("subscriberId"), "subscriberId"); err != nil {
		return 0, 0, err
	}
	return userID, subscriberID, nil
}
