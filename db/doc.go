// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connections

	conn, err := db.Open(ctx, db.TypeSQLite, "schelling-point.db")
	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

SQLite connections enable foreign keys, WAL and a busy timeout, and are
limited to one open connection.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on SQLite and PostgreSQL.

# Tables

  - event: Event settings, lifecycle status and schedule flags
  - participant: Display names and participant tokens per event
  - venue: Rooms with capacity and features
  - time_slot: Day, start, end and slot type
  - session: Proposals with their optional (venue, slot) placement
  - vote_allocation: One row per (voter, session, kind)

# Relationships

	event 1──* participant
	event 1──* venue
	event 1──* time_slot
	event 1──* session
	session 1──* vote_allocation
	session *──1 venue, time_slot (placement, nullable)

Foreign keys from event use ON DELETE CASCADE. A (venue, slot) pair holds
at most one session.
*/
package db
