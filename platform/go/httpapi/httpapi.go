// Package httpapi holds the small request/response helpers shared by all
// resource handlers.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// QueryUUID parses an optional uuid query parameter. The second return is
// false when the parameter is present but malformed.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// QueryCursor parses the cursor parameter. A missing or garbage cursor
// degrades to zero, which the pager treats as "from the beginning"; it is
// never an error.
func QueryCursor(r *http.Request) int64 {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return 0
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor < 0 {
		return 0
	}
	return cursor
}

// QueryLimit parses the limit parameter; zero defers to the pager default.
func QueryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
