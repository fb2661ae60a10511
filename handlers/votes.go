// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/events"
	"github.com/danielhkuo/schelling-point/metrics"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/schedule"
	"github.com/danielhkuo/schelling-point/store"
	"github.com/danielhkuo/schelling-point/voting"
)

type VotingHandler struct {
	st  store.Store
	cfg cliparse.Config
	pub events.Publisher
}

func NewVotingHandler(st store.Store, cfg cliparse.Config, pub events.Publisher) *VotingHandler {
	return &VotingHandler{st: st, cfg: cfg, pub: pub}
}

// GetCredits handles GET /events/{id}/credits
func (h *VotingHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParticipant(w, r, h.st)
	if !ok {
		return
	}
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	rows, err := h.st.ListVotes(r.Context(), event.ID, p.ID, models.VotePre)
	if err != nil {
		writeError(w, err, "list votes")
		return
	}

	allocations := allocationList(rows)
	middleware.JSONResponse(w, http.StatusOK, models.CreditsResponse{
		Balance:     voting.Balance(event.PreVoteCredits, voting.FromStored(rows)),
		Allocations: allocations,
	})
}

// SetVotes handles PUT /events/{id}/sessions/{sid}/votes
func (h *VotingHandler) SetVotes(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParticipant(w, r, h.st)
	if !ok {
		return
	}

	var req models.SetVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Votes > models.MaxVotesPerSession {
		writeError(w, errTooManyVotes, "set votes")
		return
	}

	ctx := r.Context()
	eventID, sessionID := r.PathValue("id"), r.PathValue("sid")

	var (
		resp  models.SetVotesResponse
		delta int
	)
	err := h.st.InTx(ctx, func(tx store.Store) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !preVotingOpen(event.Status) {
			return errVotingClosed
		}
		if _, err := getSessionInTx(ctx, tx, eventID, sessionID); err != nil {
			return err
		}
		if err := tx.LockParticipant(ctx, p.ID); err != nil {
			return err
		}

		rows, err := tx.ListVotes(ctx, eventID, p.ID, models.VotePre)
		if err != nil {
			return err
		}
		current := voting.FromStored(rows)

		next, err := voting.SetAllocation(sessionID, req.Votes, current, event.PreVoteCredits)
		if err != nil {
			return err
		}

		err = tx.UpsertVote(ctx, models.StoredVote{
			EventID:   eventID,
			VoterID:   p.ID,
			SessionID: sessionID,
			Kind:      models.VotePre,
			VoteCount: next[sessionID],
		})
		if err != nil {
			return err
		}

		delta = voting.Spent(next) - voting.Spent(current)
		resp = models.SetVotesResponse{
			Allocation: models.VoteAllocation{
				SessionID:  sessionID,
				VoteCount:  next[sessionID],
				CreditCost: voting.Cost(next[sessionID]),
			},
			Balance: voting.Balance(event.PreVoteCredits, next),
		}
		return nil
	})
	if err != nil {
		metrics.RecordAllocation(models.VotePre, allocationResult(err), 0)
		writeError(w, err, "set votes")
		return
	}
	metrics.RecordAllocation(models.VotePre, metrics.ResultOK, delta)

	slog.Info("votes allocated",
		"event_id", eventID,
		"participant_id", p.ID,
		"session_id", sessionID,
		"votes", resp.Allocation.VoteCount,
		"remaining", resp.Balance.RemainingCredits,
	)
	h.emit(ctx, events.VoteAllocated, eventID, events.AllocationPayload{
		VoterID:     p.ID,
		SessionID:   sessionID,
		Votes:       resp.Allocation.VoteCount,
		CreditsCost: resp.Allocation.CreditCost,
		Remaining:   resp.Balance.RemainingCredits,
	})

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CastAttendanceVote handles POST /events/{id}/sessions/{sid}/attendance-votes.
// Kiosks authenticate with the organizer key and identify voters by card.
func (h *VotingHandler) CastAttendanceVote(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	var req models.AttendanceVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.CardID = trimmed(req.CardID)
	if req.CardID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "card_id is required")
		return
	}
	if req.Votes < 1 {
		writeError(w, errInvalidVoteCount, "cast attendance vote")
		return
	}
	if req.Votes > models.MaxVotesPerSession {
		writeError(w, errTooManyVotes, "cast attendance vote")
		return
	}

	ctx := r.Context()
	eventID, sessionID := r.PathValue("id"), r.PathValue("sid")
	voterID := auth.HashCardID(req.CardID, h.cfg.CardSalt(eventID))

	var resp models.AttendanceVoteResponse
	err := h.st.InTx(ctx, func(tx store.Store) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !attendanceVotingOpen(event.Status) {
			return errVotingClosed
		}
		if _, err := getSessionInTx(ctx, tx, eventID, sessionID); err != nil {
			return err
		}
		if err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}

		_, err = tx.GetVote(ctx, voterID, sessionID, models.VoteAttendance)
		if err == nil {
			return voting.ErrAlreadyVoted
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		rows, err := tx.ListVotes(ctx, eventID, voterID, models.VoteAttendance)
		if err != nil {
			return err
		}
		current := voting.FromStored(rows)

		next, err := voting.SetAllocation(sessionID, req.Votes, current, event.AttendanceVoteCredits)
		if err != nil {
			return err
		}

		err = tx.UpsertVote(ctx, models.StoredVote{
			EventID:   eventID,
			VoterID:   voterID,
			SessionID: sessionID,
			Kind:      models.VoteAttendance,
			VoteCount: req.Votes,
		})
		if err != nil {
			return err
		}

		resp = models.AttendanceVoteResponse{
			CardID:      req.CardID,
			SessionID:   sessionID,
			Votes:       req.Votes,
			CreditsCost: voting.Cost(req.Votes),
			Remaining:   voting.Remaining(event.AttendanceVoteCredits, next),
		}
		return nil
	})
	if err != nil {
		metrics.RecordAllocation(models.VoteAttendance, allocationResult(err), 0)
		writeError(w, err, "cast attendance vote")
		return
	}
	metrics.RecordAllocation(models.VoteAttendance, metrics.ResultOK, resp.CreditsCost)

	slog.Info("attendance vote cast",
		"event_id", eventID,
		"session_id", sessionID,
		"votes", resp.Votes,
		"remaining", resp.Remaining,
	)
	h.emit(ctx, events.VoteAttendance, eventID, events.AllocationPayload{
		VoterID:     voterID,
		SessionID:   sessionID,
		Votes:       resp.Votes,
		CreditsCost: resp.CreditsCost,
		Remaining:   resp.Remaining,
	})

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

func (h *VotingHandler) emit(ctx context.Context, t events.Type, eventID string, payload any) {
	events.Emit(ctx, h.pub, events.Event{Type: t, EventID: eventID, Payload: payload})
}

func allocationList(rows []models.StoredVote) []models.VoteAllocation {
	out := make([]models.VoteAllocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.VoteAllocation{
			SessionID:  row.SessionID,
			VoteCount:  row.VoteCount,
			CreditCost: voting.Cost(row.VoteCount),
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return out
}

func allocationResult(err error) string {
	var credits *voting.InsufficientCreditsError
	switch {
	case errors.As(err, &credits):
		return metrics.ResultInsufficientCredits
	case errors.Is(err, voting.ErrAlreadyVoted):
		return metrics.ResultAlreadyVoted
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, schedule.ErrSessionNotFound),
		errors.Is(err, errVotingClosed),
		errors.Is(err, voting.ErrNegativeVotes):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
