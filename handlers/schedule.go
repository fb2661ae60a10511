// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/events"
	"github.com/danielhkuo/schelling-point/metrics"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/schedule"
	"github.com/danielhkuo/schelling-point/store"
)

// Schedule mutation actions
const (
	actionPlace   = "place"
	actionUnplace = "unplace"
	actionPublish = "publish"
	actionEdit    = "edit"
)

type ScheduleHandler struct {
	st  store.Store
	cfg cliparse.Config
	pub events.Publisher
}

func NewScheduleHandler(st store.Store, cfg cliparse.Config, pub events.Publisher) *ScheduleHandler {
	return &ScheduleHandler{st: st, cfg: cfg, pub: pub}
}

// GetSchedule handles GET /events/{id}/schedule
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	resp, err := buildSchedule(r.Context(), h.st, event)
	if err != nil {
		writeError(w, err, "load schedule")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Place handles POST /events/{id}/schedule/place. A session already in the
// target cell is returned to the unscheduled pool.
func (h *ScheduleHandler) Place(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	var req models.PlaceSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" || req.VenueID == "" || req.SlotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id, venue_id and slot_id are required")
		return
	}

	h.mutate(w, r, actionPlace, func(g schedule.Grid, sessions []models.Session) ([]models.Session, error) {
		return g.Place(req.SessionID, req.VenueID, req.SlotID, sessions)
	})
}

// Unplace handles POST /events/{id}/schedule/unplace
func (h *ScheduleHandler) Unplace(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	var req models.UnplaceSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	h.mutate(w, r, actionUnplace, func(g schedule.Grid, sessions []models.Session) ([]models.Session, error) {
		return g.Unplace(req.SessionID, sessions)
	})
}

// mutate applies op to the event's grid inside a transaction and responds
// with the resulting schedule.
func (h *ScheduleHandler) mutate(w http.ResponseWriter, r *http.Request, action string,
	op func(schedule.Grid, []models.Session) ([]models.Session, error)) {

	ctx := r.Context()
	eventID := r.PathValue("id")

	var resp models.ScheduleResponse
	err := h.st.InTx(ctx, func(tx store.Store) error {
		if err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		grid, sessions, err := loadGrid(ctx, tx, event)
		if err != nil {
			return err
		}
		next, err := op(grid, sessions)
		if err != nil {
			return err
		}
		if err := applyPlacements(ctx, tx, eventID, sessions, next); err != nil {
			return err
		}

		resp, err = buildSchedule(ctx, tx, event)
		return err
	})
	if err != nil {
		metrics.RecordScheduleMutation(action, mutationResult(err))
		writeError(w, err, action+" session")
		return
	}
	metrics.RecordScheduleMutation(action, metrics.ResultOK)

	slog.Info("schedule updated",
		"event_id", eventID,
		"action", action,
		"scheduled", resp.Summary.Scheduled,
		"conflicts", resp.Summary.Conflicts,
	)
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Publish handles POST /events/{id}/schedule/publish. Publishing leaves edit
// mode and advances an earlier event status to scheduled.
func (h *ScheduleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	ctx := r.Context()
	eventID := r.PathValue("id")

	var resp models.ScheduleResponse
	err := h.st.InTx(ctx, func(tx store.Store) error {
		if err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		state := scheduleState(event).Publish()
		event.SchedulePublished, event.ScheduleEditing = state.Published, state.Editing
		switch event.Status {
		case models.EventDraft, models.EventProposalsOpen, models.EventVotingOpen:
			event.Status = models.EventScheduled
		}
		if err := tx.UpsertEvent(ctx, event); err != nil {
			return err
		}

		resp, err = buildSchedule(ctx, tx, event)
		return err
	})
	if err != nil {
		metrics.RecordScheduleMutation(actionPublish, mutationResult(err))
		writeError(w, err, "publish schedule")
		return
	}
	metrics.RecordScheduleMutation(actionPublish, metrics.ResultOK)

	slog.Info("schedule published", "event_id", eventID, "scheduled", resp.Summary.Scheduled)
	events.Emit(ctx, h.pub, events.Event{
		Type:    events.SchedulePublished,
		EventID: eventID,
		Payload: events.SchedulePayload{
			Scheduled:   resp.Summary.Scheduled,
			Unscheduled: resp.Summary.Unscheduled,
			Conflicts:   resp.Summary.Conflicts,
		},
	})

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Edit handles POST /events/{id}/schedule/edit
func (h *ScheduleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	ctx := r.Context()
	eventID := r.PathValue("id")

	var resp models.ScheduleResponse
	err := h.st.InTx(ctx, func(tx store.Store) error {
		if err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}

		state, err := scheduleState(event).Edit()
		if err != nil {
			return err
		}
		event.SchedulePublished, event.ScheduleEditing = state.Published, state.Editing
		if err := tx.UpsertEvent(ctx, event); err != nil {
			return err
		}

		resp, err = buildSchedule(ctx, tx, event)
		return err
	})
	if err != nil {
		metrics.RecordScheduleMutation(actionEdit, mutationResult(err))
		writeError(w, err, "edit schedule")
		return
	}
	metrics.RecordScheduleMutation(actionEdit, metrics.ResultOK)

	slog.Info("schedule editing", "event_id", eventID)
	middleware.JSONResponse(w, http.StatusOK, resp)
}

func loadGrid(ctx context.Context, st store.Store, event models.Event) (schedule.Grid, []models.Session, error) {
	venues, err := st.ListVenues(ctx, event.ID)
	if err != nil {
		return schedule.Grid{}, nil, err
	}
	slots, err := st.ListSlots(ctx, event.ID)
	if err != nil {
		return schedule.Grid{}, nil, err
	}
	sessions, err := st.ListSessions(ctx, event.ID)
	if err != nil {
		return schedule.Grid{}, nil, err
	}
	return schedule.Grid{State: scheduleState(event), Venues: venues, Slots: slots}, sessions, nil
}

func buildSchedule(ctx context.Context, st store.Store, event models.Event) (models.ScheduleResponse, error) {
	grid, sessions, err := loadGrid(ctx, st, event)
	if err != nil {
		return models.ScheduleResponse{}, err
	}

	return models.ScheduleResponse{
		EventID:     event.ID,
		Published:   event.SchedulePublished,
		Editing:     event.ScheduleEditing,
		Venues:      grid.Venues,
		Slots:       grid.Slots,
		Scheduled:   schedule.Scheduled(sessions),
		Unscheduled: schedule.Unscheduled(sessions),
		Conflicts:   grid.Conflicts(sessions),
		Summary:     schedule.Summarize(sessions, grid.Venues),
	}, nil
}

// applyPlacements persists the difference between before and after. Every
// changed session is cleared first so a cell is never held twice.
func applyPlacements(ctx context.Context, st store.Store, eventID string, before, after []models.Session) error {
	prev := make(map[string]models.Session, len(before))
	for _, s := range before {
		prev[s.ID] = s
	}

	var changed []models.Session
	for _, s := range after {
		old := prev[s.ID]
		if old.VenueID != s.VenueID || old.SlotID != s.SlotID {
			changed = append(changed, s)
		}
	}

	for _, s := range changed {
		if prev[s.ID].Scheduled() {
			if err := st.SetPlacement(ctx, eventID, s.ID, "", ""); err != nil {
				return err
			}
		}
	}
	for _, s := range changed {
		if s.Scheduled() {
			if err := st.SetPlacement(ctx, eventID, s.ID, s.VenueID, s.SlotID); err != nil {
				return err
			}
		}
	}
	return nil
}

func mutationResult(err error) string {
	switch {
	case errors.Is(err, schedule.ErrEditingLocked), errors.Is(err, schedule.ErrNotPublished):
		return metrics.ResultLocked
	case errors.Is(err, schedule.ErrSlotNotBookable),
		errors.Is(err, schedule.ErrSessionNotFound),
		errors.Is(err, schedule.ErrVenueNotFound),
		errors.Is(err, schedule.ErrSlotNotFound),
		errors.Is(err, store.ErrNotFound):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
