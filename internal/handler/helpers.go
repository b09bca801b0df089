// Package handler implements the JSON API. Handlers decode and validate
// requests, resolve ownership through the stores, and leave scheduling
// decisions to the schedule package.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// listResponse is the envelope for every collection endpoint.
type listResponse struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, Count: len(items)})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// parseDateQuery reads an optional RFC 3339 or YYYY-MM-DD value from the
// query string. A missing parameter yields (nil, true).
func parseDateQuery(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.UTC()
		return &t, true
	}
	return nil, false
}
