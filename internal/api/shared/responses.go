package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trekora/trek-api/internal/platform/logger"
)

// Envelope is the uniform response shape: status is "success" for 2xx,
// "fail" for client errors and "error" for server errors.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Results *int   `json:"results,omitempty"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

// statusWord maps an HTTP status code onto the envelope vocabulary.
func statusWord(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return "success"
	case status < http.StatusInternalServerError:
		return "fail"
	default:
		return "error"
	}
}

// RespondWithJSON writes the envelope with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes a success envelope wrapping data.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, data any) {
	RespondWithJSON(w, r, status, Envelope{Status: statusWord(status), Data: data})
}

// RespondWithList writes a success envelope wrapping a collection and
// its result count.
func RespondWithList(w http.ResponseWriter, r *http.Request, status int, data any, results int) {
	RespondWithJSON(w, r, status, Envelope{
		Status:  statusWord(status),
		Data:    data,
		Results: &results,
	})
}

// RespondNoContent writes an empty 204 response.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondWithError writes an error envelope with the given status code
// and message, tagged with the request trace ID in the log.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger.FromContext(r.Context()).Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Envelope{Status: statusWord(status), Message: message})
}

// RespondWithErrorAndLog writes a sanitized error envelope and logs
// the underlying error. 5xx responses log at ERROR, everything else at
// DEBUG; the raw error never reaches the client.
func RespondWithErrorAndLog(w http.ResponseWriter, r *http.Request, status int, userMessage string, err error) {
	log := logger.FromContext(r.Context())

	attrs := []any{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	if status >= http.StatusInternalServerError {
		log.Error("API error response", attrs...)
	} else {
		log.Debug("API error response", attrs...)
	}

	RespondWithJSON(w, r, status, Envelope{Status: statusWord(status), Message: userMessage})
}
