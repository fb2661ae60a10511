// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table. Used by tests and the -reset flag.
func DropSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"vote_allocation", "session", "time_slot", "venue", "participant", "event"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// The schema is written in the subset of SQL shared by PostgreSQL and SQLite.
const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    timezone TEXT NOT NULL DEFAULT 'UTC',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'proposals_open', 'voting_open', 'scheduled', 'live', 'concluded')),
    pre_vote_credits INTEGER NOT NULL CHECK (pre_vote_credits > 0),
    attendance_vote_credits INTEGER NOT NULL CHECK (attendance_vote_credits > 0),
    session_budget TEXT NOT NULL DEFAULT '0',
    schedule_published BOOLEAN NOT NULL DEFAULT FALSE,
    schedule_editing BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    display_name TEXT NOT NULL,
    token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, display_name)
);

CREATE INDEX IF NOT EXISTS idx_participant_event_id ON participant(event_id);

-- Venues
CREATE TABLE IF NOT EXISTS venue (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    capacity INTEGER NOT NULL CHECK (capacity > 0),
    features TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_venue_event_id ON venue(event_id);

-- Time slots
CREATE TABLE IF NOT EXISTS time_slot (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    day INTEGER NOT NULL DEFAULT 1,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    slot_type TEXT NOT NULL DEFAULT 'session' CHECK (slot_type IN ('session', 'break', 'locked')),
    label TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_time_slot_event_id ON time_slot(event_id);

-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    host TEXT NOT NULL,
    track TEXT NOT NULL,
    format TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
    venue_id TEXT REFERENCES venue(id),
    slot_id TEXT REFERENCES time_slot(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, venue_id, slot_id)
);

CREATE INDEX IF NOT EXISTS idx_session_event_id ON session(event_id);

-- Vote allocations (pre-event and attendance)
CREATE TABLE IF NOT EXISTS vote_allocation (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('pre', 'attendance')),
    vote_count INTEGER NOT NULL CHECK (vote_count > 0),
    credits_spent INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (voter_id, session_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_vote_allocation_event ON vote_allocation(event_id, kind);
CREATE INDEX IF NOT EXISTS idx_vote_allocation_session ON vote_allocation(session_id, kind);
`
