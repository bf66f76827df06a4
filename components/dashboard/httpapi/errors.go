package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrPageNotFound),
		errors.Is(err, dashboard.ErrInstanceNotFound),
		errors.Is(err, dashboard.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrUnknownColumn),
		errors.Is(err, dashboard.ErrUnknownFilter),
		errors.Is(err, dashboard.ErrInvalidFilterValue),
		errors.Is(err, dashboard.ErrInvalidViewConfig),
		errors.Is(err, dashboard.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
