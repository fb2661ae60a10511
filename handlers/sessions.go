// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
)

// Session list orderings
const (
	SortVotes        = "votes"
	SortRecent       = "recent"
	SortAlphabetical = "alphabetical"
)

type SessionHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewSessionHandler(st store.Store, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{st: st, cfg: cfg}
}

// ProposeSession handles POST /events/{id}/sessions
func (h *SessionHandler) ProposeSession(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParticipant(w, r, h.st)
	if !ok {
		return
	}

	var req models.ProposeSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = trimmed(req.Title)
	switch {
	case req.Title == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	case !models.ValidTrack(req.Track):
		middleware.ErrorResponse(w, http.StatusBadRequest, "track must be one of "+strings.Join(models.Tracks, ", "))
		return
	case !models.ValidFormat(req.Format):
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be one of "+strings.Join(models.Formats, ", "))
		return
	case req.DurationMinutes <= 0:
		middleware.ErrorResponse(w, http.StatusBadRequest, "duration_minutes must be positive")
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}
	if event.Status == models.EventConcluded {
		writeError(w, errProposalsClosed, "propose session")
		return
	}

	s := models.Session{
		ID:              auth.NewID(),
		EventID:         event.ID,
		Title:           req.Title,
		Description:     req.Description,
		Host:            p.DisplayName,
		Track:           req.Track,
		Format:          req.Format,
		DurationMinutes: req.DurationMinutes,
	}
	if err := h.st.UpsertSession(r.Context(), s); err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to propose session")
		return
	}

	slog.Info("session proposed", "event_id", event.ID, "session_id", s.ID, "host", p.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: s.ID})
}

// ListSessions handles GET /events/{id}/sessions?track=&format=&q=&sort=
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortBy := query.Get("sort")
	switch sortBy {
	case "", SortVotes, SortRecent, SortAlphabetical:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "sort must be votes, recent or alphabetical")
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	sessions, err := h.st.ListSessions(r.Context(), event.ID)
	if err != nil {
		writeError(w, err, "list sessions")
		return
	}

	sessions = FilterSessions(sessions, query.Get("track"), query.Get("format"), query.Get("q"))
	SortSessions(sessions, sortBy)

	middleware.JSONResponse(w, http.StatusOK, sessions)
}

// GetSession handles GET /events/{id}/sessions/{sid}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.st.GetSession(r.Context(), r.PathValue("id"), r.PathValue("sid"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, err, "get session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}

// DeleteSession handles DELETE /events/{id}/sessions/{sid}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	err := h.st.DeleteSession(r.Context(), r.PathValue("id"), r.PathValue("sid"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, err, "delete session")
		return
	}

	slog.Info("session deleted", "event_id", r.PathValue("id"), "session_id", r.PathValue("sid"))
	w.WriteHeader(http.StatusNoContent)
}

// MySessions handles GET /events/{id}/my-sessions: the sessions hosted by
// the participant behind the token.
func (h *SessionHandler) MySessions(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParticipant(w, r, h.st)
	if !ok {
		return
	}

	sessions, err := h.st.ListSessions(r.Context(), p.EventID)
	if err != nil {
		writeError(w, err, "list sessions")
		return
	}

	mine := []models.Session{}
	for _, s := range sessions {
		if s.Host == p.DisplayName {
			mine = append(mine, s)
		}
	}
	middleware.JSONResponse(w, http.StatusOK, mine)
}

// FilterSessions keeps sessions matching every non-empty criterion. q is a
// case-insensitive substring of title, description or host.
func FilterSessions(sessions []models.Session, track, format, q string) []models.Session {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []models.Session{}
	for _, s := range sessions {
		if track != "" && s.Track != track {
			continue
		}
		if format != "" && s.Format != format {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Title), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) &&
			!strings.Contains(strings.ToLower(s.Host), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SortSessions orders in place. Ties keep insertion order; an empty key
// keeps insertion order entirely.
func SortSessions(sessions []models.Session, by string) {
	switch by {
	case SortVotes:
		slices.SortStableFunc(sessions, func(a, b models.Session) int {
			return b.Votes - a.Votes
		})
	case SortRecent:
		slices.Reverse(sessions)
		slices.SortStableFunc(sessions, func(a, b models.Session) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortAlphabetical:
		slices.SortStableFunc(sessions, func(a, b models.Session) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}
}
