// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Schelling Point API server.

Schelling Point is an unconference backend: participants propose sessions
and spend a fixed budget of credits on quadratic votes (n votes cost n²
credits), organizers arrange sessions on a venue × time-slot grid with
capacity conflict warnings, and attendance votes cast at kiosks drive a
quadratic funding split of the session budget.

# Starting the Server

With the defaults (SQLite in the working directory) only the salts are
required:

	ORGANIZER_KEY_SALT=... EVENT_SLUG_SALT=... go run .

PostgreSQL, a demo fixture and Kafka:

	go run . -t postgres -d "postgres://..." -seed seed/testdata/demo.yaml \
		-kafka-brokers localhost:9092

Settings may also live in a .env file (see -env-file).

# Configuration

Required settings:

  - ORGANIZER_KEY_SALT (-organizer-salt): Secret for organizer key HMAC
  - EVENT_SLUG_SALT (-slug-salt): Secret for event slug generation
  - CARD_HASH_SALT (-card-salt): Secret for attendance card hashes, defaults to the slug salt

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): File path or PostgreSQL connection string
  - DEFAULT_VOTE_CREDITS, DEFAULT_ATTENDANCE_CREDITS: Per-event defaults
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output
  - SEED_FILE (-seed): YAML fixture loaded at startup
  - KAFKA_BROKERS, KAFKA_TOPIC: Domain event publishing

# Architecture

  - handlers: HTTP request handlers (events, sessions, votes, venues, schedule, funding)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - voting: Quadratic credit ledger and quadratic funding
  - schedule: Grid placement, publish lock and conflict detection
  - store: Persistence over database/sql
  - db: Connections and schema creation
  - events: Domain event publishing (Kafka or log)
  - metrics: Prometheus collectors
  - seed: YAML fixtures
  - models, auth, cliparse, logging: Shared types, tokens, configuration and logging

See package documentation for each component.
*/
package main
