package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/users"
)

type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/users", h.list)
	mux.HandleFunc("POST /admin/users", h.create)
	mux.HandleFunc("DELETE /admin/users/{userId}", h.delete)
}

type NewUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email,min=6,max=254"`
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var body NewUserRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	user, err := h.svc.Create(r.Context(), users.CreateParams{Name: body.Name, Email: body.Email})
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserView(*user))
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	ids, err := queryIDs(r.URL.Query()["ids"], "ids")
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.List(r.Context(), ids, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserViews(found))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
