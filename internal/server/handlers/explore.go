// internal/server/handlers/explore.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/explore"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
)

// SessionHandler handles explore session HTTP requests
type SessionHandler struct {
	manager explore.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager explore.Manager) *SessionHandler {
	return &SessionHandler{
		manager: manager,
	}
}

// sessionStateResponse is the full state snapshot returned for a session
type sessionStateResponse struct {
	ID         string               `json:"id"`
	Global     location.FetchState  `json:"global"`
	Viewport   location.FetchState  `json:"viewport"`
	Search     location.SearchState `json:"search"`
	Categories []location.Category  `json:"categories"`
}

func sessionState(s explore.Session) sessionStateResponse {
	return sessionStateResponse{
		ID:         s.ID(),
		Global:     s.GlobalState(),
		Viewport:   s.ViewportState(),
		Search:     s.SearchState(),
		Categories: s.Categories(),
	}
}

// CreateSession creates a new explore session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.CreateSession()
	if err != nil {
		if errors.Is(err, explore.ErrTooManySessions) {
			respondWithError(w, http.StatusServiceUnavailable, "Too many sessions", err)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to create session", err)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, sessionState(session))
}

// GetSession returns a session's full state snapshot
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, sessionState(session))
}

// CloseSession closes a session
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing session ID", nil)
		return
	}

	if err := h.manager.CloseSession(id); err != nil {
		if errors.Is(err, explore.ErrSessionNotFound) {
			respondWithError(w, http.StatusNotFound, "Session not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to close session", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// ReportViewport reports a viewport change. The engine debounces the change,
// so the response only acknowledges receipt.
func (h *SessionHandler) ReportViewport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Bbox *string `json:"bbox"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session.ReportViewportChange(req.Bbox)
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// SuppressNextFetch arms the one-shot suppress flag
func (h *SessionHandler) SuppressNextFetch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	session.SuppressNextFetch()
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// UpdateSearch reports new raw search input. The engine debounces the input,
// so the response only acknowledges receipt.
func (h *SessionHandler) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Query    string `json:"query"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session.UpdateSearch(req.Query, req.Category)
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetSearch returns the committed search state
func (h *SessionHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, session.SearchState())
}

// GetLocations returns the active dataset, optionally filtered by lifecycle
// status
func (h *SessionHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	records := session.ActiveLocations()

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := location.Status(strings.ToLower(statusStr))
		switch status {
		case location.StatusCandidate, location.StatusVerified, location.StatusRetired:
			records = location.FilterByStatus(records, status)
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid status filter", nil)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, records)
}

// GetCategories returns the categories derived from the active dataset, or
// the directory's canonical list when source=remote is requested
func (h *SessionHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("source") == "remote" {
		categories, err := session.RemoteCategories(r.Context())
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Failed to fetch directory categories", err)
			return
		}
		respondWithJSON(w, http.StatusOK, categories)
		return
	}

	respondWithJSON(w, http.StatusOK, session.Categories())
}

// session resolves the {id} URL param to a live session, writing the error
// response itself when it cannot.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (explore.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing session ID", nil)
		return nil, false
	}

	session, err := h.manager.GetSession(id)
	if err != nil {
		if errors.Is(err, explore.ErrSessionNotFound) {
			respondWithError(w, http.StatusNotFound, "Session not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get session", err)
		}
		return nil, false
	}
	return session, true
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		logger.L().Error("http error", "code", code, "message", message, "err", err)
	}

	response := map[string]string{"error": message}
	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
