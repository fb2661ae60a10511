// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/schelling-point/middleware"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/testutil"
)

func TestProposeSession(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(st, cfg)
	event, _ := testutil.CreateTestEvent(t, st, cfg)
	alice := testutil.CreateTestParticipant(t, st, event.ID, "alice")

	valid := models.ProposeSessionRequest{
		Title:           "Intro to MEV",
		Description:     "Searchers and builders",
		Track:           models.TrackDeFi,
		Format:          models.FormatWorkshop,
		DurationMinutes: 90,
	}

	tests := []struct {
		name           string
		token          string
		body           models.ProposeSessionRequest
		expectedStatus int
	}{
		{"valid proposal", alice.Token, valid, http.StatusCreated},
		{"missing token", "", valid, http.StatusUnauthorized},
		{"unknown token", "not-a-token", valid, http.StatusUnauthorized},
		{"missing title", alice.Token, models.ProposeSessionRequest{Track: models.TrackDeFi, Format: models.FormatTalk, DurationMinutes: 30}, http.StatusBadRequest},
		{"bad track", alice.Token, models.ProposeSessionRequest{Title: "x", Track: "memes", Format: models.FormatTalk, DurationMinutes: 30}, http.StatusBadRequest},
		{"bad format", alice.Token, models.ProposeSessionRequest{Title: "x", Track: models.TrackSocial, Format: "rave", DurationMinutes: 30}, http.StatusBadRequest},
		{"zero duration", alice.Token, models.ProposeSessionRequest{Title: "x", Track: models.TrackSocial, Format: models.FormatTalk}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+event.ID+"/sessions", tt.body,
				map[string]string{middleware.HeaderParticipantToken: tt.token})
			req.SetPathValue("id", event.ID)
			w := httptest.NewRecorder()

			handler.ProposeSession(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	sessions, err := st.ListSessions(context.Background(), event.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.Host != "alice" {
		t.Errorf("Expected host to be the participant's display name, got %q", s.Host)
	}
	if s.Votes != 0 || s.Scheduled() {
		t.Errorf("New session should have no votes and no placement: %+v", s)
	}
}

func TestProposeSessionConcludedEvent(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(st, cfg)
	event, _ := testutil.CreateTestEvent(t, st, cfg)
	alice := testutil.CreateTestParticipant(t, st, event.ID, "alice")

	event.Status = models.EventConcluded
	if err := st.UpsertEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	req := testutil.MakeRequest("POST", "/events/"+event.ID+"/sessions", models.ProposeSessionRequest{
		Title: "Late", Track: models.TrackSocial, Format: models.FormatDiscussion, DurationMinutes: 30,
	}, map[string]string{middleware.HeaderParticipantToken: alice.Token})
	req.SetPathValue("id", event.ID)
	w := httptest.NewRecorder()

	handler.ProposeSession(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestListSessions(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(st, cfg)
	event, _ := testutil.CreateTestEvent(t, st, cfg)

	a := testutil.AddTestSession(t, st, event.ID, "Zero Knowledge 101", "carol")
	b := testutil.AddTestSession(t, st, event.ID, "account abstraction", "dave")
	c := testutil.AddTestSession(t, st, event.ID, "Public Goods", "erin")
	testutil.CastTestVotes(t, st, event.ID, "v1", b.ID, 3)
	testutil.CastTestVotes(t, st, event.ID, "v2", c.ID, 5)

	list := func(query string) []models.Session {
		t.Helper()
		req := testutil.MakeRequest("GET", "/events/"+event.ID+"/sessions"+query, nil, nil)
		req.SetPathValue("id", event.ID)
		w := httptest.NewRecorder()
		handler.ListSessions(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var out []models.Session
		testutil.AssertJSON(t, w, &out)
		return out
	}
	ids := func(sessions []models.Session) []string {
		out := []string{}
		for _, s := range sessions {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{a.ID, b.ID, c.ID}},
		{"?sort=votes", []string{c.ID, b.ID, a.ID}},
		{"?sort=alphabetical", []string{b.ID, c.ID, a.ID}},
		{"?q=GOODS", []string{c.ID}},
		{"?q=dave", []string{b.ID}},
		{"?track=technical&format=talk&sort=votes", []string{c.ID, b.ID, a.ID}},
		{"?track=governance", []string{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(list(tt.query))); diff != "" {
			t.Errorf("ListSessions(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}

	req := testutil.MakeRequest("GET", "/events/"+event.ID+"/sessions?sort=random", nil, nil)
	req.SetPathValue("id", event.ID)
	w := httptest.NewRecorder()
	handler.ListSessions(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetAndDeleteSession(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(st, cfg)
	event, key := testutil.CreateTestEvent(t, st, cfg)
	s := testutil.AddTestSession(t, st, event.ID, "Keynote", "frank")
	testutil.CastTestVotes(t, st, event.ID, "v1", s.ID, 4)

	get := func() *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/events/"+event.ID+"/sessions/"+s.ID, nil, nil)
		req.SetPathValue("id", event.ID)
		req.SetPathValue("sid", s.ID)
		w := httptest.NewRecorder()
		handler.GetSession(w, req)
		return w
	}
	del := func(key string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/events/"+event.ID+"/sessions/"+s.ID, nil,
			map[string]string{middleware.HeaderOrganizerKey: key})
		req.SetPathValue("id", event.ID)
		req.SetPathValue("sid", s.ID)
		w := httptest.NewRecorder()
		handler.DeleteSession(w, req)
		return w
	}

	w := get()
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.Session
	testutil.AssertJSON(t, w, &got)
	if got.Votes != 4 {
		t.Errorf("Expected 4 votes, got %d", got.Votes)
	}

	testutil.AssertStatus(t, del("wrong"), http.StatusUnauthorized)
	testutil.AssertStatus(t, del(key), http.StatusNoContent)
	testutil.AssertStatus(t, del(key), http.StatusNotFound)
	testutil.AssertStatus(t, get(), http.StatusNotFound)
}

func TestSortSessions(t *testing.T) {
	base := time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC)
	sessions := func() []models.Session {
		return []models.Session{
			{ID: "a", Title: "beta", Votes: 2, CreatedAt: base},
			{ID: "b", Title: "Alpha", Votes: 5, CreatedAt: base.Add(time.Minute)},
			{ID: "c", Title: "gamma", Votes: 2, CreatedAt: base.Add(time.Minute)},
		}
	}

	tests := []struct {
		by   string
		want []string
	}{
		{"", []string{"a", "b", "c"}},
		{SortVotes, []string{"b", "a", "c"}},
		{SortAlphabetical, []string{"b", "a", "c"}},
		{SortRecent, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		got := sessions()
		SortSessions(got, tt.by)
		ids := []string{}
		for _, s := range got {
			ids = append(ids, s.ID)
		}
		if diff := cmp.Diff(tt.want, ids); diff != "" {
			t.Errorf("SortSessions(%q) mismatch (-want +got):\n%s", tt.by, diff)
		}
	}
}

func TestFilterSessions(t *testing.T) {
	sessions := []models.Session{
		{ID: "a", Title: "DAO tooling", Track: models.TrackGovernance, Format: models.FormatPanel, Host: "alice"},
		{ID: "b", Title: "Rollups", Description: "fraud proofs vs validity", Track: models.TrackTechnical, Format: models.FormatTalk, Host: "bob"},
		{ID: "c", Title: "Regen", Track: models.TrackSustainability, Format: models.FormatTalk, Host: "Alice"},
	}

	tests := []struct {
		name             string
		track, format, q string
		want             []string
	}{
		{"no filters", "", "", "", []string{"a", "b", "c"}},
		{"track", models.TrackTechnical, "", "", []string{"b"}},
		{"format", "", models.FormatTalk, "", []string{"b", "c"}},
		{"host case-insensitive", "", "", "ALICE", []string{"a", "c"}},
		{"description", "", "", "validity", []string{"b"}},
		{"combined", "", models.FormatTalk, "alice", []string{"c"}},
		{"nothing", models.TrackCreative, "", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, s := range FilterSessions(sessions, tt.track, tt.format, tt.q) {
				ids = append(ids, s.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("FilterSessions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
