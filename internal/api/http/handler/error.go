package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bayegaspard/datasite/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes. Unknown errors are
// collapsed into a generic 500 so internals never leak to the wire.
func writeError(w http.ResponseWriter, err error) {
	var policyErr *model.PolicyError

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &policyErr):
		status = http.StatusUnprocessableEntity
		message = policyErr.Error()
	case errors.Is(err, model.ErrPermissionDenied):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, model.ErrRegistrationDisabled):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, model.ErrInvalidOrExpiredToken):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, model.ErrInvalidPath):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, model.ErrAlreadyExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoSettingsFound):
		status = http.StatusNotFound
		message = "record not found"
	case errors.Is(err, model.ErrPeerUnreachable):
		status = http.StatusBadGateway
		message = err.Error()
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &model.PolicyError{Field: "body", Msg: "malformed JSON request body"}
	}
	return nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
