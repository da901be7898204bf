package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/afisha-events/server/internal/api/apierror"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON parses the request body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return faults.Invalidf("malformed request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return faults.Invalidf("invalid request body: %v", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// pathID parses a positive integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, faults.Invalidf("%s %q must be a positive integer", name, raw)
	}
	return id, nil
}

// queryIDs parses a repeated or comma-joined integer query parameter.
func queryIDs(values []string, name string) ([]int64, error) {
	var ids []int64
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, faults.Invalidf("%s %q must be an integer", name, part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func queryBool(value, name string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, faults.Invalidf("%s %q must be a boolean", name, value)
	}
	return &parsed, nil
}

func queryTime(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateTimeLayout, value)
	if err != nil {
		return nil, faults.Invalidf("%s %q must match %q", name, value, DateTimeLayout)
	}
	return &parsed, nil
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// fail writes the mapped error response.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	apierror.Write(w, r, err)
}
