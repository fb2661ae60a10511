// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Schelling Point API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - EventHandler: Event creation, status changes, participant joins, directory and removal
  - SessionHandler: Proposals, filtered listing, hosted sessions, deletion
  - VotingHandler: Credit balances, quadratic allocations, attendance votes
  - VenueHandler: Venues and time slots
  - ScheduleHandler: Grid placement, publish and edit
  - FundingHandler: Quadratic funding of the session budget

Handlers are created via constructor functions that accept a store.Store and
Config; those that emit domain events also take an events.Publisher:

	votingHandler := handlers.NewVotingHandler(st, cfg, publisher)

# Event Lifecycle

	draft → proposals_open → voting_open → scheduled → live → concluded

Proposals close at concluded. Pre-event votes close at live. Attendance
votes are accepted while scheduled or live. Publishing the schedule moves
an earlier event to scheduled.

# Authentication

Organizer operations require the X-Organizer-Key header, an HMAC of the
event id. Participant operations require the X-Participant-Token header
returned by JoinEvent. Attendance kiosks use the organizer key and pass the
voter's card id in the body; the card id is stored only as a salted hash.

# Quadratic Voting

SetVotes and CastAttendanceVote run inside store.InTx and lock the voter
(participant row or event row) before reading the ledger, so concurrent
requests cannot overspend a budget. Over-budget requests get 422 with the
shortfall and remaining credits.

# Errors

writeError maps voting, schedule and store errors onto 400, 404, 409 and
422. Anything unrecognised is logged and reported as 500.
*/
package handlers
