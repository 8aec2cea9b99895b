package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/google/uuid"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Envelope is the body of every response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Success:    success,
		Message:    message,
		Data:       data,
	}); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, true, message, data)
}

// writeError maps err to its status code. Storage and internal errors are
// reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	writeErrorData(w, err, nil)
}

func writeErrorData(w http.ResponseWriter, err error, data any) {
	status := apperr.HTTPStatus(apperr.KindOf(err))
	writeEnvelope(w, status, false, apperr.MessageOf(err), data)
}

var (
	errInvalidJSON = apperr.Validation("request body is not valid JSON")
	errInvalidID   = apperr.Validation("invalid id")
)

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return errInvalidJSON
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
