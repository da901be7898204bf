package handlers

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/compilations"
)

type CompilationHandler struct {
	svc *compilations.Service
}

func NewCompilationHandler(svc *compilations.Service) *CompilationHandler {
	return &CompilationHandler{svc: svc}
}

func (h *CompilationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /compilations", h.list)
	mux.HandleFunc("GET /compilations/{compId}", h.get)
	mux.HandleFunc("POST /admin/compilations", h.create)
	mux.HandleFunc("PATCH /admin/compilations/{compId}", h.update)
	mux.HandleFunc("DELETE /admin/compilations/{compId}", h.delete)
}

type NewCompilationRequest struct {
	Title  string  `json:"title" validate:"required,min=1,max=50"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

type UpdateCompilationRequest struct {
	Title  *string  `json:"title" validate:"omitempty,min=1,max=50"`
	Pinned *bool    `json:"pinned"`
	Events *[]int64 `json:"events"`
}

func (h *CompilationHandler) create(w http.ResponseWriter, r *http.Request) {
	var body NewCompilationRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	compilation, err := h.svc.Create(r.Context(), compilations.CreateParams{
		Title:    body.Title,
		Pinned:   body.Pinned,
		EventIDs: body.Events,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCompilationView(compilation))
}

func (h *CompilationHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body UpdateCompilationRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(w, r, err)
		return
	}

	compilation, err := h.svc.Update(r.Context(), id, compilations.UpdateParams{
		Title:    body.Title,
		Pinned:   body.Pinned,
		EventIDs: body.Events,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCompilationView(compilation))
}

func (h *CompilationHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
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

func (h *CompilationHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	pinned, err := queryBool(r.URL.Query().Get("pinned"), "pinned")
	if err != nil {
		fail(w, r, err)
		return
	}

	found, err := h.svc.List(r.Context(), pinned, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCompilationViews(found))
}

func (h *CompilationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		fail(w, r, err)
		return
	}

	compilation, err := h.svc.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCompilationView(compilation))
}
