package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"compactbudget/internal/core"
	"compactbudget/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	// Headers are already written; an encode failure here means the client
	// went away.
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidSection):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, core.ErrDuplicateCategory):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, core.ErrCategoryNotFound):
		status = http.StatusNotFound
		message = err.Error()
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldError, err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
