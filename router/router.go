// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/events"
	"github.com/danielhkuo/schelling-point/handlers"
	"github.com/danielhkuo/schelling-point/metrics"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/store"
)

func NewRouter(st store.Store, cfg cliparse.Config, pub events.Publisher) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(st, cfg)
	sessionHandler := handlers.NewSessionHandler(st, cfg)
	votingHandler := handlers.NewVotingHandler(st, cfg, pub)
	venueHandler := handlers.NewVenueHandler(st, cfg)
	scheduleHandler := handlers.NewScheduleHandler(st, cfg, pub)
	fundingHandler := handlers.NewFundingHandler(st, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Events and participants
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("PUT /events/{id}/status", middleware.WithLogging(eventHandler.UpdateStatus))
	mux.HandleFunc("POST /events/{id}/participants", middleware.WithLogging(eventHandler.JoinEvent))
	mux.HandleFunc("GET /events/{id}/participants", middleware.WithLogging(eventHandler.ListParticipants))
	mux.HandleFunc("DELETE /events/{id}/participants/{pid}", middleware.WithLogging(eventHandler.RemoveParticipant))

	// Session proposals
	mux.HandleFunc("POST /events/{id}/sessions", middleware.WithLogging(sessionHandler.ProposeSession))
	mux.HandleFunc("GET /events/{id}/sessions", middleware.WithLogging(sessionHandler.ListSessions))
	mux.HandleFunc("GET /events/{id}/sessions/{sid}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /events/{id}/sessions/{sid}", middleware.WithLogging(sessionHandler.DeleteSession))
	mux.HandleFunc("GET /events/{id}/my-sessions", middleware.WithLogging(sessionHandler.MySessions))

	// Quadratic voting
	mux.HandleFunc("GET /events/{id}/credits", middleware.WithLogging(votingHandler.GetCredits))
	mux.HandleFunc("PUT /events/{id}/sessions/{sid}/votes", middleware.WithLogging(votingHandler.SetVotes))
	mux.HandleFunc("POST /events/{id}/sessions/{sid}/attendance-votes", middleware.WithLogging(votingHandler.CastAttendanceVote))

	// Venues and time slots
	mux.HandleFunc("GET /events/{id}/venues", middleware.WithLogging(venueHandler.ListVenues))
	mux.HandleFunc("POST /events/{id}/venues", middleware.WithLogging(venueHandler.CreateVenue))
	mux.HandleFunc("PUT /events/{id}/venues/{vid}", middleware.WithLogging(venueHandler.UpdateVenue))
	mux.HandleFunc("DELETE /events/{id}/venues/{vid}", middleware.WithLogging(venueHandler.DeleteVenue))
	mux.HandleFunc("GET /events/{id}/slots", middleware.WithLogging(venueHandler.ListSlots))
	mux.HandleFunc("POST /events/{id}/slots", middleware.WithLogging(venueHandler.CreateSlot))
	mux.HandleFunc("DELETE /events/{id}/slots/{slid}", middleware.WithLogging(venueHandler.DeleteSlot))

	// Schedule grid
	mux.HandleFunc("GET /events/{id}/schedule", middleware.WithLogging(scheduleHandler.GetSchedule))
	mux.HandleFunc("POST /events/{id}/schedule/place", middleware.WithLogging(scheduleHandler.Place))
	mux.HandleFunc("POST /events/{id}/schedule/unplace", middleware.WithLogging(scheduleHandler.Unplace))
	mux.HandleFunc("POST /events/{id}/schedule/publish", middleware.WithLogging(scheduleHandler.Publish))
	mux.HandleFunc("POST /events/{id}/schedule/edit", middleware.WithLogging(scheduleHandler.Edit))

	// Funding
	mux.HandleFunc("GET /events/{id}/funding", middleware.WithLogging(fundingHandler.GetFunding))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("schelling-point API v1"))
	})

	return mux
}
