// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/schelling-point/models"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements Store on PostgreSQL or SQLite. Queries use $N
// placeholders, which both drivers accept.
type SQLStore struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Events

const eventColumns = `id, name, slug, description, timezone, status, pre_vote_credits,
	attendance_vote_credits, session_budget, schedule_published, schedule_editing, created_at`

func scanEvent(row interface{ Scan(...any) error }) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Timezone, &e.Status,
		&e.PreVoteCredits, &e.AttendanceVoteCredits, &e.SessionBudget,
		&e.SchedulePublished, &e.ScheduleEditing, &e.CreatedAt)
	return e, err
}

func (s *SQLStore) GetEvent(ctx context.Context, id string) (models.Event, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM event WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		return models.Event{}, notFound(err, "get event")
	}
	return e, nil
}

func (s *SQLStore) GetEventBySlug(ctx context.Context, slug string) (models.Event, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM event WHERE slug = $1`, slug)
	e, err := scanEvent(row)
	if err != nil {
		return models.Event{}, notFound(err, "get event by slug")
	}
	return e, nil
}

func (s *SQLStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+eventColumns+` FROM event ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLStore) UpsertEvent(ctx context.Context, e models.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO event (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			description = excluded.description,
			timezone = excluded.timezone,
			status = excluded.status,
			pre_vote_credits = excluded.pre_vote_credits,
			attendance_vote_credits = excluded.attendance_vote_credits,
			session_budget = excluded.session_budget,
			schedule_published = excluded.schedule_published,
			schedule_editing = excluded.schedule_editing
	`, e.ID, e.Name, e.Slug, e.Description, e.Timezone, e.Status, e.PreVoteCredits,
		e.AttendanceVoteCredits, e.SessionBudget, e.SchedulePublished, e.ScheduleEditing, e.CreatedAt)
	return writeErr(err, "upsert event")
}

func (s *SQLStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM event WHERE id = $1`, id)
	return affected(res, err, "delete event")
}

// LockEvent serializes writers on one event for the rest of the transaction.
func (s *SQLStore) LockEvent(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE event SET id = id WHERE id = $1`, id)
	return affected(res, err, "lock event")
}

// Participants

const participantColumns = `id, event_id, display_name, token, created_at`

func scanParticipant(row interface{ Scan(...any) error }) (models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.EventID, &p.DisplayName, &p.Token, &p.CreatedAt)
	return p, err
}

func (s *SQLStore) GetParticipant(ctx context.Context, id string) (models.Participant, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participant WHERE id = $1`, id)
	p, err := scanParticipant(row)
	if err != nil {
		return models.Participant{}, notFound(err, "get participant")
	}
	return p, nil
}

func (s *SQLStore) GetParticipantByToken(ctx context.Context, eventID, token string) (models.Participant, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+participantColumns+` FROM participant
		WHERE event_id = $1 AND token = $2
	`, eventID, token)
	p, err := scanParticipant(row)
	if err != nil {
		return models.Participant{}, notFound(err, "get participant by token")
	}
	return p, nil
}

func (s *SQLStore) ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+participantColumns+` FROM participant
		WHERE event_id = $1 ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	out := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertParticipant(ctx context.Context, p models.Participant) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO participant (`+participantColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			token = excluded.token
	`, p.ID, p.EventID, p.DisplayName, p.Token, p.CreatedAt)
	return writeErr(err, "upsert participant")
}

func (s *SQLStore) DeleteParticipant(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM vote_allocation WHERE voter_id = $1 AND kind = $2`, id, models.VotePre); err != nil {
		return fmt.Errorf("delete participant votes: %w", err)
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM participant WHERE id = $1`, id)
	return affected(res, err, "delete participant")
}

// LockParticipant serializes allocation changes for one participant for the
// rest of the transaction.
func (s *SQLStore) LockParticipant(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE participant SET id = id WHERE id = $1`, id)
	return affected(res, err, "lock participant")
}

// Sessions

const sessionSelect = `
	SELECT s.id, s.event_id, s.title, s.description, s.host, s.track, s.format,
	       s.duration_minutes, s.venue_id, s.slot_id, s.created_at,
	       COALESCE((SELECT SUM(va.vote_count) FROM vote_allocation va
	                 WHERE va.session_id = s.id AND va.kind = 'pre'), 0)
	FROM session s`

func scanSession(row interface{ Scan(...any) error }) (models.Session, error) {
	var (
		sess  models.Session
		venue sql.NullString
		slot  sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.EventID, &sess.Title, &sess.Description, &sess.Host,
		&sess.Track, &sess.Format, &sess.DurationMinutes, &venue, &slot, &sess.CreatedAt, &sess.Votes)
	sess.VenueID = venue.String
	sess.SlotID = slot.String
	return sess, err
}

func (s *SQLStore) GetSession(ctx context.Context, eventID, id string) (models.Session, error) {
	row := s.q.QueryRowContext(ctx, sessionSelect+` WHERE s.event_id = $1 AND s.id = $2`, eventID, id)
	sess, err := scanSession(row)
	if err != nil {
		return models.Session{}, notFound(err, "get session")
	}
	return sess, nil
}

func (s *SQLStore) ListSessions(ctx context.Context, eventID string) ([]models.Session, error) {
	rows, err := s.q.QueryContext(ctx, sessionSelect+` WHERE s.event_id = $1 ORDER BY s.position, s.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []models.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertSession(ctx context.Context, sess models.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO session (id, event_id, position, title, description, host, track, format,
		                     duration_minutes, venue_id, slot_id, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM session WHERE event_id = $2),
		        $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			host = excluded.host,
			track = excluded.track,
			format = excluded.format,
			duration_minutes = excluded.duration_minutes,
			venue_id = excluded.venue_id,
			slot_id = excluded.slot_id
	`, sess.ID, sess.EventID, sess.Title, sess.Description, sess.Host, sess.Track, sess.Format,
		sess.DurationMinutes, nullString(sess.VenueID), nullString(sess.SlotID), sess.CreatedAt)
	return writeErr(err, "upsert session")
}

func (s *SQLStore) DeleteSession(ctx context.Context, eventID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM session WHERE event_id = $1 AND id = $2`, eventID, id)
	return affected(res, err, "delete session")
}

func (s *SQLStore) SetPlacement(ctx context.Context, eventID, sessionID, venueID, slotID string) error {
	if venueID == "" || slotID == "" {
		venueID, slotID = "", ""
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE session SET venue_id = $1, slot_id = $2
		WHERE event_id = $3 AND id = $4
	`, nullString(venueID), nullString(slotID), eventID, sessionID)
	if err != nil {
		return writeErr(err, "set placement")
	}
	return affected(res, nil, "set placement")
}

// Venues

func scanVenue(row interface{ Scan(...any) error }) (models.Venue, error) {
	var (
		v        models.Venue
		features string
	)
	if err := row.Scan(&v.ID, &v.EventID, &v.Name, &v.Capacity, &features); err != nil {
		return models.Venue{}, err
	}
	v.Features = []string{}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &v.Features); err != nil {
			return models.Venue{}, fmt.Errorf("decode venue features: %w", err)
		}
	}
	return v, nil
}

func (s *SQLStore) GetVenue(ctx context.Context, eventID, id string) (models.Venue, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, event_id, name, capacity, features FROM venue
		WHERE event_id = $1 AND id = $2
	`, eventID, id)
	v, err := scanVenue(row)
	if err != nil {
		return models.Venue{}, notFound(err, "get venue")
	}
	return v, nil
}

func (s *SQLStore) ListVenues(ctx context.Context, eventID string) ([]models.Venue, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, event_id, name, capacity, features FROM venue
		WHERE event_id = $1 ORDER BY capacity DESC, name, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	out := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertVenue(ctx context.Context, v models.Venue) error {
	features := v.Features
	if features == nil {
		features = []string{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("encode venue features: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO venue (id, event_id, name, capacity, features)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			capacity = excluded.capacity,
			features = excluded.features
	`, v.ID, v.EventID, v.Name, v.Capacity, string(encoded))
	return writeErr(err, "upsert venue")
}

func (s *SQLStore) DeleteVenue(ctx context.Context, eventID, id string) error {
	return s.InTx(ctx, func(tx Store) error {
		st := tx.(*SQLStore)
		if _, err := st.q.ExecContext(ctx, `
			UPDATE session SET venue_id = NULL, slot_id = NULL
			WHERE event_id = $1 AND venue_id = $2
		`, eventID, id); err != nil {
			return fmt.Errorf("unplace venue sessions: %w", err)
		}
		res, err := st.q.ExecContext(ctx, `DELETE FROM venue WHERE event_id = $1 AND id = $2`, eventID, id)
		return affected(res, err, "delete venue")
	})
}

// Time slots

func scanSlot(row interface{ Scan(...any) error }) (models.TimeSlot, error) {
	var t models.TimeSlot
	err := row.Scan(&t.ID, &t.EventID, &t.Day, &t.Start, &t.End, &t.Type, &t.Label)
	return t, err
}

func (s *SQLStore) GetSlot(ctx context.Context, eventID, id string) (models.TimeSlot, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, event_id, day, start_time, end_time, slot_type, label FROM time_slot
		WHERE event_id = $1 AND id = $2
	`, eventID, id)
	t, err := scanSlot(row)
	if err != nil {
		return models.TimeSlot{}, notFound(err, "get time slot")
	}
	return t, nil
}

func (s *SQLStore) ListSlots(ctx context.Context, eventID string) ([]models.TimeSlot, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, event_id, day, start_time, end_time, slot_type, label FROM time_slot
		WHERE event_id = $1 ORDER BY day, start_time, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	defer rows.Close()

	out := []models.TimeSlot{}
	for rows.Next() {
		t, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertSlot(ctx context.Context, t models.TimeSlot) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO time_slot (id, event_id, day, start_time, end_time, slot_type, label)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			day = excluded.day,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			slot_type = excluded.slot_type,
			label = excluded.label
	`, t.ID, t.EventID, t.Day, t.Start, t.End, t.Type, t.Label)
	return writeErr(err, "upsert time slot")
}

func (s *SQLStore) DeleteSlot(ctx context.Context, eventID, id string) error {
	return s.InTx(ctx, func(tx Store) error {
		st := tx.(*SQLStore)
		if _, err := st.q.ExecContext(ctx, `
			UPDATE session SET venue_id = NULL, slot_id = NULL
			WHERE event_id = $1 AND slot_id = $2
		`, eventID, id); err != nil {
			return fmt.Errorf("unplace slot sessions: %w", err)
		}
		res, err := st.q.ExecContext(ctx, `DELETE FROM time_slot WHERE event_id = $1 AND id = $2`, eventID, id)
		return affected(res, err, "delete time slot")
	})
}

// Vote allocations

const voteColumns = `event_id, voter_id, session_id, kind, vote_count, updated_at`

func scanVote(row interface{ Scan(...any) error }) (models.StoredVote, error) {
	var v models.StoredVote
	err := row.Scan(&v.EventID, &v.VoterID, &v.SessionID, &v.Kind, &v.VoteCount, &v.UpdatedAt)
	return v, err
}

func (s *SQLStore) queryVotes(ctx context.Context, query string, args ...any) ([]models.StoredVote, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	out := []models.StoredVote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListVotes(ctx context.Context, eventID, voterID, kind string) ([]models.StoredVote, error) {
	return s.queryVotes(ctx, `
		SELECT `+voteColumns+` FROM vote_allocation
		WHERE event_id = $1 AND voter_id = $2 AND kind = $3
		ORDER BY session_id
	`, eventID, voterID, kind)
}

func (s *SQLStore) ListEventVotes(ctx context.Context, eventID, kind string) ([]models.StoredVote, error) {
	return s.queryVotes(ctx, `
		SELECT `+voteColumns+` FROM vote_allocation
		WHERE event_id = $1 AND kind = $2
		ORDER BY session_id, voter_id
	`, eventID, kind)
}

func (s *SQLStore) GetVote(ctx context.Context, voterID, sessionID, kind string) (models.StoredVote, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+voteColumns+` FROM vote_allocation
		WHERE voter_id = $1 AND session_id = $2 AND kind = $3
	`, voterID, sessionID, kind)
	v, err := scanVote(row)
	if err != nil {
		return models.StoredVote{}, notFound(err, "get vote")
	}
	return v, nil
}

func (s *SQLStore) UpsertVote(ctx context.Context, v models.StoredVote) error {
	if v.VoteCount == 0 {
		_, err := s.q.ExecContext(ctx, `
			DELETE FROM vote_allocation
			WHERE voter_id = $1 AND session_id = $2 AND kind = $3
		`, v.VoterID, v.SessionID, v.Kind)
		return writeErr(err, "delete vote")
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO vote_allocation (event_id, voter_id, session_id, kind, vote_count, credits_spent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (voter_id, session_id, kind) DO UPDATE SET
			vote_count = excluded.vote_count,
			credits_spent = excluded.credits_spent,
			updated_at = excluded.updated_at
	`, v.EventID, v.VoterID, v.SessionID, v.Kind, v.VoteCount, v.VoteCount*v.VoteCount, v.UpdatedAt)
	return writeErr(err, "upsert vote")
}

// helpers

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func writeErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(res sql.Result, err error, op string) error {
	if err != nil {
		return writeErr(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
