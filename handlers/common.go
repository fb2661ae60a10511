// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/schedule"
	"github.com/danielhkuo/schelling-point/store"
	"github.com/danielhkuo/schelling-point/voting"
)

var (
	errVotingClosed     = errors.New("voting is closed for this event")
	errProposalsClosed  = errors.New("event no longer accepts proposals")
	errInvalidVoteCount = errors.New("votes must be at least 1")
	errTooManyVotes     = fmt.Errorf("votes must be at most %d", models.MaxVotesPerSession)
)

// loadEvent fetches the {id} event or writes 404/500.
func loadEvent(w http.ResponseWriter, r *http.Request, st store.Store) (models.Event, bool) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event id is required")
		return models.Event{}, false
	}

	event, err := st.GetEvent(r.Context(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return models.Event{}, false
	}
	if err != nil {
		slog.Error("failed to load event", "event_id", eventID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Event{}, false
	}
	return event, true
}

// requireOrganizer validates X-Organizer-Key for the {id} event.
func requireOrganizer(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) bool {
	key := r.Header.Get(middleware.HeaderOrganizerKey)
	if err := auth.ValidateOrganizerKey(r.PathValue("id"), key, cfg.OrganizerKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid organizer key")
		return false
	}
	return true
}

// requireParticipant resolves X-Participant-Token within the {id} event.
func requireParticipant(w http.ResponseWriter, r *http.Request, st store.Store) (models.Participant, bool) {
	token := r.Header.Get(middleware.HeaderParticipantToken)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Participant token required")
		return models.Participant{}, false
	}

	p, err := st.GetParticipantByToken(r.Context(), r.PathValue("id"), token)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid participant token")
		return models.Participant{}, false
	}
	if err != nil {
		slog.Error("failed to load participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Participant{}, false
	}
	return p, true
}

// writeError maps domain and store errors onto HTTP statuses. Unknown
// errors are logged with op and reported as 500.
func writeError(w http.ResponseWriter, err error, op string) {
	var credits *voting.InsufficientCreditsError
	switch {
	case errors.As(err, &credits):
		middleware.InsufficientCreditsResponse(w, credits.Error(), credits.Shortfall, credits.Remaining)
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, schedule.ErrSessionNotFound),
		errors.Is(err, schedule.ErrVenueNotFound),
		errors.Is(err, schedule.ErrSlotNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, schedule.ErrEditingLocked),
		errors.Is(err, schedule.ErrNotPublished),
		errors.Is(err, voting.ErrAlreadyVoted),
		errors.Is(err, errVotingClosed),
		errors.Is(err, errProposalsClosed):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Conflicts with an existing record")
	case errors.Is(err, schedule.ErrSlotNotBookable),
		errors.Is(err, voting.ErrNegativeVotes),
		errors.Is(err, voting.ErrMissingSession),
		errors.Is(err, errInvalidVoteCount),
		errors.Is(err, errTooManyVotes):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to "+op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return "Not found"
	}
	return err.Error()
}

// getSessionInTx returns schedule.ErrSessionNotFound for an unknown session
// so the message names what is missing.
func getSessionInTx(ctx context.Context, tx store.Store, eventID, sessionID string) (models.Session, error) {
	s, err := tx.GetSession(ctx, eventID, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, schedule.ErrSessionNotFound
	}
	return s, err
}

func scheduleState(e models.Event) schedule.State {
	return schedule.State{Published: e.SchedulePublished, Editing: e.ScheduleEditing}
}

func preVotingOpen(status string) bool {
	return status != models.EventLive && status != models.EventConcluded
}

func attendanceVotingOpen(status string) bool {
	return status == models.EventScheduled || status == models.EventLive
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
