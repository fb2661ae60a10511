// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/db"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/store"
)

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := db.Open(ctx, db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a SQLStore over a fresh test database
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	return store.NewSQLStore(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                     3318,
		DatabaseURL:              ":memory:",
		DatabaseType:             db.TypeSQLite,
		BaseURL:                  "http://localhost:3318",
		OrganizerKeySalt:         "test-organizer-salt",
		EventSlugSalt:            "test-slug-salt",
		DefaultVoteCredits:       100,
		DefaultAttendanceCredits: 100,
		LogLevel:                 "info",
		LogFormat:                "text",
		KafkaTopic:               cliparse.DefaultKafkaTopic,
	}
}

// CreateTestEvent stores an event with 100 pre-vote and attendance credits
// and a 1000.00 session budget, returning it with its organizer key.
func CreateTestEvent(t *testing.T, st store.Store, cfg cliparse.Config) (models.Event, string) {
	t.Helper()

	id := auth.NewID()
	e := models.Event{
		ID:                    id,
		Name:                  "Test Event",
		Slug:                  auth.GenerateEventSlug(id, cfg.EventSlugSalt),
		Timezone:              "UTC",
		Status:                models.EventVotingOpen,
		PreVoteCredits:        100,
		AttendanceVoteCredits: 100,
		SessionBudget:         "1000.00",
	}
	if err := st.UpsertEvent(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	got, err := st.GetEvent(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to reload test event: %v", err)
	}
	return got, auth.GenerateOrganizerKey(id, cfg.OrganizerKeySalt)
}

// CreateTestParticipant joins an event and returns the participant with its token
func CreateTestParticipant(t *testing.T, st store.Store, eventID, name string) models.Participant {
	t.Helper()

	token, _ := auth.GenerateParticipantToken()
	p := models.Participant{
		ID:          auth.NewID(),
		EventID:     eventID,
		DisplayName: name,
		Token:       token,
	}
	if err := st.UpsertParticipant(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}
	return p
}

// AddTestSession proposes a 60-minute technical talk
func AddTestSession(t *testing.T, st store.Store, eventID, title, host string) models.Session {
	t.Helper()

	s := models.Session{
		ID:              auth.NewID(),
		EventID:         eventID,
		Title:           title,
		Host:            host,
		Track:           models.TrackTechnical,
		Format:          models.FormatTalk,
		DurationMinutes: 60,
	}
	if err := st.UpsertSession(context.Background(), s); err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return s
}

// AddTestVenue adds a venue with the given capacity
func AddTestVenue(t *testing.T, st store.Store, eventID, name string, capacity int) models.Venue {
	t.Helper()

	v := models.Venue{
		ID:       auth.NewID(),
		EventID:  eventID,
		Name:     name,
		Capacity: capacity,
		Features: []string{},
	}
	if err := st.UpsertVenue(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test venue: %v", err)
	}
	return v
}

// AddTestSlot adds a day-one time slot of the given type
func AddTestSlot(t *testing.T, st store.Store, eventID, start, end, slotType string) models.TimeSlot {
	t.Helper()

	ts := models.TimeSlot{
		ID:      auth.NewID(),
		EventID: eventID,
		Day:     1,
		Start:   start,
		End:     end,
		Type:    slotType,
	}
	if err := st.UpsertSlot(context.Background(), ts); err != nil {
		t.Fatalf("Failed to create test slot: %v", err)
	}
	return ts
}

// CastTestVotes writes a pre-event allocation directly, bypassing the budget
func CastTestVotes(t *testing.T, st store.Store, eventID, voterID, sessionID string, votes int) {
	t.Helper()

	err := st.UpsertVote(context.Background(), models.StoredVote{
		EventID:   eventID,
		VoterID:   voterID,
		SessionID: sessionID,
		Kind:      models.VotePre,
		VoteCount: votes,
	})
	if err != nil {
		t.Fatalf("Failed to cast test votes: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
