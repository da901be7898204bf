package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
)

type CategoryHandler struct {
	svc *categories.Service
}

func NewCategoryHandler(svc *categories.Service) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.list)
	mux.HandleFunc("GET /categories/{catId}", h.get)
	mux.HandleFunc("POST /admin/categories", h.create)
	mux.HandleFunc("PATCH /admin/categories/{catId}", h.update)
	mux.HandleFunc("DELETE /admin/categories/{catId}", h.delete)
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var body CategoryRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	category, err := h.svc.Create(r.Context(), body.Name)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryView(*category))
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body CategoryRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	category, err := h.svc.Update(r.Context(), id, body.Name)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryView(*category))
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
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

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.List(r.Context(), page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryViews(found))
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
	if err != nil {
		fail(w, r, err)
		return
	}

	category, err := h.svc.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryView(*category))
}
