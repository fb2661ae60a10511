// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
)

type EventHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewEventHandler(st store.Store, cfg cliparse.Config) *EventHandler {
	return &EventHandler{st: st, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = trimmed(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.PreVoteCredits < 0 || req.AttendanceVoteCredits < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "credits must be positive")
		return
	}
	if req.PreVoteCredits == 0 {
		req.PreVoteCredits = h.cfg.DefaultVoteCredits
	}
	if req.AttendanceVoteCredits == 0 {
		req.AttendanceVoteCredits = h.cfg.DefaultAttendanceCredits
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	budget := decimal.Zero
	if req.SessionBudget != "" {
		var err error
		budget, err = decimal.NewFromString(req.SessionBudget)
		if err != nil || budget.IsNegative() {
			middleware.ErrorResponse(w, http.StatusBadRequest, "session_budget must be a non-negative amount")
			return
		}
	}

	eventID := auth.NewID()
	event := models.Event{
		ID:                    eventID,
		Name:                  req.Name,
		Slug:                  auth.GenerateEventSlug(eventID, h.cfg.EventSlugSalt),
		Description:           req.Description,
		Timezone:              req.Timezone,
		Status:                models.EventProposalsOpen,
		PreVoteCredits:        req.PreVoteCredits,
		AttendanceVoteCredits: req.AttendanceVoteCredits,
		SessionBudget:         budget.StringFixed(2),
	}

	if err := h.st.UpsertEvent(r.Context(), event); err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID, "slug", event.Slug)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:      eventID,
		Slug:         event.Slug,
		OrganizerKey: auth.GenerateOrganizerKey(eventID, h.cfg.OrganizerKeySalt),
		EventURL:     h.cfg.BaseURL + "/e/" + event.Slug,
	})
}

// GetEvent handles GET /events/{id}. The id may also be the event slug.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := h.st.GetEvent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		event, err = h.st.GetEventBySlug(r.Context(), id)
	}
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, event)
}

// UpdateStatus handles PUT /events/{id}/status
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.ValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown status")
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	event.Status = req.Status
	if err := h.st.UpsertEvent(r.Context(), event); err != nil {
		writeError(w, err, "update event status")
		return
	}

	slog.Info("event status changed", "event_id", event.ID, "status", event.Status)
	middleware.JSONResponse(w, http.StatusOK, event)
}

// JoinEvent handles POST /events/{id}/participants
func (h *EventHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	var req models.JoinEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.DisplayName = trimmed(req.DisplayName)
	if req.DisplayName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}
	if len(req.DisplayName) > 64 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name must be 64 characters or fewer")
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	token, err := auth.GenerateParticipantToken()
	if err != nil {
		slog.Error("failed to generate participant token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join event")
		return
	}

	p := models.Participant{
		ID:          auth.NewID(),
		EventID:     event.ID,
		DisplayName: req.DisplayName,
		Token:       token,
	}
	err = h.st.UpsertParticipant(r.Context(), p)
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "Display name already taken")
		return
	}
	if err != nil {
		slog.Error("failed to insert participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join event")
		return
	}

	slog.Info("participant joined", "event_id", event.ID, "participant_id", p.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.JoinEventResponse{
		ParticipantID:    p.ID,
		ParticipantToken: token,
	})
}
