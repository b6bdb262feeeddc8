// Package httphandler implements the JSON API driving adapter and the
// middleware shared by every route.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/profilepanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	sessions *application.SessionService
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(sessions *application.SessionService, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.Session)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Session reports the current session state derived from the credential store.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.State(r.Context())
	h.logger.Debug("session state queried", "state", state)

	writeJSON(w, http.StatusOK, SessionResponse{State: string(state)})
}
