// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/schelling-point/events"
	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/testutil"
)

// TestFullEventWorkflow tests the complete organizer and participant flow:
// 1. Create event and open voting
// 2. Participants join and propose sessions
// 3. Participants allocate quadratic votes
// 4. Organizer builds the grid and publishes
// 5. Attendance votes at the kiosk
// 6. Funding distribution
func TestFullEventWorkflow(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	rec := &events.Recorder{}

	eventHandler := NewEventHandler(st, cfg)
	sessionHandler := NewSessionHandler(st, cfg)
	votingHandler := NewVotingHandler(st, cfg, rec)
	venueHandler := NewVenueHandler(st, cfg)
	scheduleHandler := NewScheduleHandler(st, cfg, rec)
	fundingHandler := NewFundingHandler(st, cfg)

	call := func(fn http.HandlerFunc, method, path string, body any, headers map[string]string, values map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest(method, path, body, headers)
		for k, v := range values {
			req.SetPathValue(k, v)
		}
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	// Step 1: Create the event
	w := call(eventHandler.CreateEvent, "POST", "/events", models.CreateEventRequest{
		Name:           "Schelling Point Denver",
		PreVoteCredits: 100,
		SessionBudget:  "5000",
	}, nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create event failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreateEventResponse
	testutil.AssertJSON(t, w, &created)
	eventID := created.EventID
	org := map[string]string{middleware.HeaderOrganizerKey: created.OrganizerKey}
	ids := map[string]string{"id": eventID}

	w = call(eventHandler.UpdateStatus, "PUT", "/events/"+eventID+"/status",
		models.UpdateStatusRequest{Status: models.EventVotingOpen}, org, ids)
	testutil.AssertStatus(t, w, http.StatusOK)
	t.Logf("Step 1 - Created event %s", eventID)

	// Step 2: Join and propose
	tokens := map[string]string{}
	for _, name := range []string{"alice", "bob", "carol"} {
		w = call(eventHandler.JoinEvent, "POST", "/events/"+eventID+"/participants",
			models.JoinEventRequest{DisplayName: name}, nil, ids)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Join failed for %s: %d - %s", name, w.Code, w.Body.String())
		}
		var joined models.JoinEventResponse
		testutil.AssertJSON(t, w, &joined)
		tokens[name] = joined.ParticipantToken
	}

	propose := func(token, title string) string {
		w := call(sessionHandler.ProposeSession, "POST", "/events/"+eventID+"/sessions", models.ProposeSessionRequest{
			Title: title, Track: models.TrackTechnical, Format: models.FormatTalk, DurationMinutes: 45,
		}, map[string]string{middleware.HeaderParticipantToken: token}, ids)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Propose %q failed: %d - %s", title, w.Code, w.Body.String())
		}
		var resp models.CreatedResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.ID
	}
	zk := propose(tokens["alice"], "ZK in practice")
	dao := propose(tokens["bob"], "DAO tooling")

	// Step 3: Allocate votes
	vote := func(name, sessionID string, votes int) {
		w := call(votingHandler.SetVotes, "PUT", "/events/"+eventID+"/sessions/"+sessionID+"/votes",
			models.SetVotesRequest{Votes: votes},
			map[string]string{middleware.HeaderParticipantToken: tokens[name]},
			map[string]string{"id": eventID, "sid": sessionID})
		if w.Code != http.StatusOK {
			t.Fatalf("Step 3 - %s voting %d on %s failed: %d - %s", name, votes, sessionID, w.Code, w.Body.String())
		}
	}
	vote("alice", zk, 6)
	vote("bob", zk, 5)
	vote("carol", zk, 7)
	vote("carol", dao, 7)

	w = call(sessionHandler.ListSessions, "GET", "/events/"+eventID+"/sessions?sort=votes", nil, nil, ids)
	var ranked []models.Session
	testutil.AssertJSON(t, w, &ranked)
	if len(ranked) != 2 || ranked[0].ID != zk || ranked[0].Votes != 18 {
		t.Fatalf("Step 3 - Unexpected ranking %+v", ranked)
	}

	// Step 4: Build the grid
	w = call(venueHandler.CreateVenue, "POST", "/events/"+eventID+"/venues",
		models.VenueRequest{Name: "Main Stage", Capacity: 15}, org, ids)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var stage models.Venue
	testutil.AssertJSON(t, w, &stage)

	w = call(venueHandler.CreateSlot, "POST", "/events/"+eventID+"/slots",
		models.TimeSlotRequest{Start: "10:00", End: "11:00"}, org, ids)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var slot models.TimeSlot
	testutil.AssertJSON(t, w, &slot)

	w = call(scheduleHandler.Place, "POST", "/events/"+eventID+"/schedule/place",
		models.PlaceSessionRequest{SessionID: zk, VenueID: stage.ID, SlotID: slot.ID}, org, ids)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = call(scheduleHandler.Publish, "POST", "/events/"+eventID+"/schedule/publish", nil, org, ids)
	testutil.AssertStatus(t, w, http.StatusOK)
	var sched models.ScheduleResponse
	testutil.AssertJSON(t, w, &sched)
	want := models.ScheduleSummary{Total: 2, Scheduled: 1, Unscheduled: 1, Conflicts: 0}
	if sched.Summary != want {
		t.Errorf("Step 4 - Expected summary %+v, got %+v", want, sched.Summary)
	}
	t.Logf("Step 4 - Published schedule: %+v", sched.Summary)

	// Step 5: Attendance votes now that the event is scheduled
	for _, card := range []string{"card-a", "card-b", "card-c", "card-d"} {
		w = call(votingHandler.CastAttendanceVote, "POST", "/events/"+eventID+"/sessions/"+zk+"/attendance-votes",
			models.AttendanceVoteRequest{CardID: card, Votes: 1}, org,
			map[string]string{"id": eventID, "sid": zk})
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
	w = call(votingHandler.CastAttendanceVote, "POST", "/events/"+eventID+"/sessions/"+dao+"/attendance-votes",
		models.AttendanceVoteRequest{CardID: "card-e", Votes: 2}, org,
		map[string]string{"id": eventID, "sid": dao})
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Step 6: Funding. zk scores (4*1)^2 = 16, dao scores (sqrt 4)^2 = 4.
	w = call(fundingHandler.GetFunding, "GET", "/events/"+eventID+"/funding", nil, nil, ids)
	testutil.AssertStatus(t, w, http.StatusOK)
	var funding models.FundingResponse
	testutil.AssertJSON(t, w, &funding)
	if len(funding.Shares) != 2 || funding.Shares[0].SessionID != zk {
		t.Fatalf("Step 6 - Unexpected shares %+v", funding.Shares)
	}
	if funding.Shares[0].Amount != "4000.00" || funding.Shares[1].Amount != "1000.00" {
		t.Errorf("Step 6 - Expected 4000.00/1000.00, got %s/%s", funding.Shares[0].Amount, funding.Shares[1].Amount)
	}

	if got := len(rec.OfType(events.VoteAllocated)); got != 4 {
		t.Errorf("Expected 4 vote.allocated events, got %d", got)
	}
	if got := len(rec.OfType(events.VoteAttendance)); got != 5 {
		t.Errorf("Expected 5 vote.attendance events, got %d", got)
	}
	if got := len(rec.OfType(events.SchedulePublished)); got != 1 {
		t.Errorf("Expected 1 schedule.published event, got %d", got)
	}
}
