package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/afisha-events/server/internal/api/apierror"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/stats"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /hit", h.recordHit)
	mux.HandleFunc("GET /stats", h.views)
}

func (h *Handler) recordHit(w http.ResponseWriter, r *http.Request) {
	var hit stats.Hit
	if err := json.NewDecoder(r.Body).Decode(&hit); err != nil {
		apierror.Write(w, r, faults.Invalidf("malformed request body: %v", err))
		return
	}
	if hit.Timestamp.Time().IsZero() {
		hit.Timestamp = stats.Timestamp(time.Now())
	}

	if err := h.svc.RecordHit(r.Context(), hit); err != nil {
		apierror.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(hit)
}

func (h *Handler) views(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := Filters{Unique: query.Get("unique") == "true"}

	var err error
	if filters.Start, err = parseTime(query.Get("start")); err != nil {
		apierror.Write(w, r, err)
		return
	}
	if filters.End, err = parseTime(query.Get("end")); err != nil {
		apierror.Write(w, r, err)
		return
	}
	// uris may be repeated or comma-joined.
	for _, raw := range query["uris"] {
		for _, uri := range strings.Split(raw, ",") {
			if uri != "" {
				filters.URIs = append(filters.URIs, uri)
			}
		}
	}

	counts, err := h.svc.Views(r.Context(), filters)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(stats.TimeLayout, value)
	if err != nil {
		return time.Time{}, faults.Invalidf("timestamp %q must match %q", value, stats.TimeLayout)
	}
	return parsed, nil
}
