package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header. Every request is logged.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/shipments", s.handleCreateShipment)
	mux.HandleFunc("GET /v1/shipments", s.handleListShipments)
	mux.HandleFunc("GET /v1/shipments/{id}", s.handleGetShipment)
	mux.HandleFunc("PATCH /v1/shipments/{id}", s.handleUpdateShipment)
	mux.HandleFunc("DELETE /v1/shipments/{id}", s.handleDeleteShipment)
	mux.HandleFunc("POST /v1/shipments/{id}/undelete", s.handleUndeleteShipment)
	mux.HandleFunc("GET /v1/owners", s.handleListOwners)
	mux.HandleFunc("POST /v1/owners", s.handleCreateOwner)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return LoggingMiddleware(s.logger, AuthMiddleware(authToken, mux))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps input and not-found errors to 400 and 404; anything
// else is logged and reported as 500 with the generic message.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFound, generic string) {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		s.logger.Error(generic, "error", err)
		writeError(w, http.StatusInternalServerError, generic)
	}
}
