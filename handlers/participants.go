// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
	"github.com/danielhkuo/schelling-point/voting"
)

// ListParticipants handles GET /events/{id}/participants?q=
func (h *EventHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	ctx := r.Context()
	participants, err := h.st.ListParticipants(ctx, event.ID)
	if err != nil {
		writeError(w, err, "list participants")
		return
	}
	sessions, err := h.st.ListSessions(ctx, event.ID)
	if err != nil {
		writeError(w, err, "list sessions")
		return
	}
	votes, err := h.st.ListEventVotes(ctx, event.ID, models.VotePre)
	if err != nil {
		writeError(w, err, "list votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK,
		ParticipantDirectory(participants, sessions, votes, r.URL.Query().Get("q")))
}

// RemoveParticipant handles DELETE /events/{id}/participants/{pid}. The
// participant's pre-event allocations go with them; sessions they host stay.
func (h *EventHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	ctx := r.Context()
	eventID, participantID := r.PathValue("id"), r.PathValue("pid")

	err := h.st.InTx(ctx, func(tx store.Store) error {
		p, err := tx.GetParticipant(ctx, participantID)
		if err != nil {
			return err
		}
		if p.EventID != eventID {
			return store.ErrNotFound
		}
		return tx.DeleteParticipant(ctx, p.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
		return
	}
	if err != nil {
		writeError(w, err, "remove participant")
		return
	}

	slog.Info("participant removed", "event_id", eventID, "participant_id", participantID)
	w.WriteHeader(http.StatusNoContent)
}

// ParticipantDirectory summarizes participants with their hosted sessions and
// pre-event spend. q filters by case-insensitive display name substring;
// the counts always cover every participant.
func ParticipantDirectory(participants []models.Participant, sessions []models.Session, votes []models.StoredVote, q string) models.ParticipantDirectoryResponse {
	hosted := make(map[string]int)
	for _, s := range sessions {
		hosted[s.Host]++
	}
	byVoter := make(map[string]voting.Allocations)
	for _, v := range votes {
		if v.VoteCount <= 0 {
			continue
		}
		if byVoter[v.VoterID] == nil {
			byVoter[v.VoterID] = voting.Allocations{}
		}
		byVoter[v.VoterID][v.SessionID] = v.VoteCount
	}

	q = strings.ToLower(strings.TrimSpace(q))
	resp := models.ParticipantDirectoryResponse{
		Total:        len(participants),
		Participants: []models.ParticipantSummary{},
	}
	for _, p := range participants {
		summary := models.ParticipantSummary{
			ID:               p.ID,
			DisplayName:      p.DisplayName,
			SessionsProposed: hosted[p.DisplayName],
			CreditsSpent:     voting.Spent(byVoter[p.ID]),
			JoinedAt:         p.CreatedAt,
		}
		if summary.CreditsSpent > 0 {
			resp.Voted++
		}
		if summary.SessionsProposed > 0 {
			resp.Hosting++
		}
		if q != "" && !strings.Contains(strings.ToLower(p.DisplayName), q) {
			continue
		}
		resp.Participants = append(resp.Participants, summary)
	}
	return resp
}
