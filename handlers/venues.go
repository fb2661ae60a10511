// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
)

const clockLayout = "15:04"

type VenueHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewVenueHandler(st store.Store, cfg cliparse.Config) *VenueHandler {
	return &VenueHandler{st: st, cfg: cfg}
}

// CreateVenue handles POST /events/{id}/venues
func (h *VenueHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	req, ok := parseVenue(w, r)
	if !ok {
		return
	}
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	v := models.Venue{
		ID:       auth.NewID(),
		EventID:  event.ID,
		Name:     req.Name,
		Capacity: req.Capacity,
		Features: req.Features,
	}
	if err := h.st.UpsertVenue(r.Context(), v); err != nil {
		writeError(w, err, "insert venue")
		return
	}

	slog.Info("venue created", "event_id", event.ID, "venue_id", v.ID, "capacity", v.Capacity)
	middleware.JSONResponse(w, http.StatusCreated, v)
}

// UpdateVenue handles PUT /events/{id}/venues/{vid}
func (h *VenueHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	req, ok := parseVenue(w, r)
	if !ok {
		return
	}

	v, err := h.st.GetVenue(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Venue not found")
		return
	}
	if err != nil {
		writeError(w, err, "get venue")
		return
	}

	v.Name, v.Capacity, v.Features = req.Name, req.Capacity, req.Features
	if err := h.st.UpsertVenue(r.Context(), v); err != nil {
		writeError(w, err, "update venue")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// DeleteVenue handles DELETE /events/{id}/venues/{vid}. Sessions placed in
// the venue return to the unscheduled pool.
func (h *VenueHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	err := h.st.DeleteVenue(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Venue not found")
		return
	}
	if err != nil {
		writeError(w, err, "delete venue")
		return
	}

	slog.Info("venue deleted", "event_id", r.PathValue("id"), "venue_id", r.PathValue("vid"))
	w.WriteHeader(http.StatusNoContent)
}

// ListVenues handles GET /events/{id}/venues
func (h *VenueHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	venues, err := h.st.ListVenues(r.Context(), event.ID)
	if err != nil {
		writeError(w, err, "list venues")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, venues)
}

// CreateSlot handles POST /events/{id}/slots
func (h *VenueHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	var req models.TimeSlotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateSlot(&req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	ts := models.TimeSlot{
		ID:      auth.NewID(),
		EventID: event.ID,
		Day:     req.Day,
		Start:   req.Start,
		End:     req.End,
		Type:    req.Type,
		Label:   trimmed(req.Label),
	}
	if err := h.st.UpsertSlot(r.Context(), ts); err != nil {
		writeError(w, err, "insert slot")
		return
	}

	slog.Info("slot created", "event_id", event.ID, "slot_id", ts.ID, "type", ts.Type)
	middleware.JSONResponse(w, http.StatusCreated, ts)
}

// DeleteSlot handles DELETE /events/{id}/slots/{slid}
func (h *VenueHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if !requireOrganizer(w, r, h.cfg) {
		return
	}

	err := h.st.DeleteSlot(r.Context(), r.PathValue("id"), r.PathValue("slid"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Slot not found")
		return
	}
	if err != nil {
		writeError(w, err, "delete slot")
		return
	}

	slog.Info("slot deleted", "event_id", r.PathValue("id"), "slot_id", r.PathValue("slid"))
	w.WriteHeader(http.StatusNoContent)
}

// ListSlots handles GET /events/{id}/slots
func (h *VenueHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	event, ok := loadEvent(w, r, h.st)
	if !ok {
		return
	}

	slots, err := h.st.ListSlots(r.Context(), event.ID)
	if err != nil {
		writeError(w, err, "list slots")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, slots)
}

func parseVenue(w http.ResponseWriter, r *http.Request) (models.VenueRequest, bool) {
	var req models.VenueRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return req, false
	}

	req.Name = trimmed(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return req, false
	}
	if req.Capacity <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "capacity must be positive")
		return req, false
	}

	features := make([]string, 0, len(req.Features))
	for _, f := range req.Features {
		if f = trimmed(f); f != "" {
			features = append(features, f)
		}
	}
	req.Features = features
	return req, true
}

// validateSlot normalizes req and returns a message for the first problem.
func validateSlot(req *models.TimeSlotRequest) string {
	if req.Day == 0 {
		req.Day = 1
	}
	if req.Type == "" {
		req.Type = models.SlotSession
	}

	if req.Day < 0 {
		return "day must be positive"
	}
	if !models.ValidSlotType(req.Type) {
		return "type must be one of " + strings.Join(models.SlotTypes, ", ")
	}
	start, err := time.Parse(clockLayout, req.Start)
	if err != nil {
		return "start must be HH:MM"
	}
	end, err := time.Parse(clockLayout, req.End)
	if err != nil {
		return "end must be HH:MM"
	}
	if !end.After(start) {
		return "end must be after start"
	}
	return ""
}
