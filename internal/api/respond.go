package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/logger"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.Forbidden):
		return http.StatusForbidden
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.HTTP().WithError(err).Warn("failed to encode response")
	}
}

// writeError logs the full error chain and returns only the message of
// client errors. Internal failures are reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := logger.HTTP().WithFields(logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithField("details", errors.Details(err)).Error("request failed")
		message = "internal server error"
	} else {
		log.Debugf("request rejected: %v", err)
	}
	writeJSON(w, status, errorBody{Error: message})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return errors.NotValidf("request body: %v", err)
}
