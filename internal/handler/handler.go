package handler

import (
	"encoding/json"
	"net/http"

	"product-catalog/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError writes a failure envelope. detail is the underlying error text
// and may be empty.
func writeError(w http.ResponseWriter, r *http.Request, status int, message, detail string, logger zerolog.Logger) {
	reqID := chimw.GetReqID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Int("status", status).
		Str("message", message).
		Str("error", detail).
		Str("request_id", reqID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Success:   false,
		Message:   message,
		Error:     detail,
		RequestID: reqID,
	})
}

// Info handles GET / with the static API description.
func Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIInfo())
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// NotFound answers unknown routes with a failure envelope.
func NotFound(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, model.MsgRouteNotFound, r.Method+" "+r.URL.Path, logger)
	}
}
