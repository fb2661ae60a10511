// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
	"github.com/danielhkuo/schelling-point/voting"
)

type FundingHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewFundingHandler(st store.Store, cfg cliparse.Config) *FundingHandler {
	return &FundingHandler{st: st, cfg: cfg}
}

// GetFunding handles GET /events/{id}/funding?kind=pre|attendance. The
// session budget is split by quadratic funding over the chosen vote kind,
// attendance by default.
func (h *FundingHandler) GetFunding(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	switch kind {
	case "":
		kind = models.VoteAttendance
	case models.VotePre, models.VoteAttendance:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be pre or attendance")
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	pool, err := decimal.NewFromString(event.SessionBudget)
	if err != nil {
		slog.Error("invalid stored session budget", "event_id", event.ID, "budget", event.SessionBudget, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Invalid session budget")
		return
	}

	ctx := r.Context()
	votes, err := h.st.ListEventVotes(ctx, event.ID, kind)
	if err != nil {
		writeError(w, err, "list event votes")
		return
	}
	sessions, err := h.st.ListSessions(ctx, event.ID)
	if err != nil {
		writeError(w, err, "list sessions")
		return
	}

	titles := make(map[string]string, len(sessions))
	for _, s := range sessions {
		titles[s.ID] = s.Title
	}

	contributions := make([]voting.Contribution, 0, len(votes))
	for _, v := range votes {
		contributions = append(contributions, voting.Contribution{
			SessionID: v.SessionID,
			VoterID:   v.VoterID,
			Credits:   voting.Cost(v.VoteCount),
		})
	}

	shares := voting.Distribute(pool, contributions)
	out := make([]models.FundingShare, 0, len(shares))
	for _, s := range shares {
		out = append(out, models.FundingShare{
			SessionID:  s.SessionID,
			Title:      titles[s.SessionID],
			Voters:     s.Voters,
			Credits:    s.Credits,
			Score:      s.Score,
			Percentage: s.Percentage,
			Amount:     s.Amount.StringFixed(2),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.FundingResponse{
		EventID: event.ID,
		Pool:    pool.StringFixed(2),
		Kind:    kind,
		Shares:  out,
	})
}
