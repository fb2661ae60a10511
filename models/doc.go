// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.
All JSON field names are snake_case.

# Request Types

  - CreateEventRequest: name, description, timezone, credits, session_budget
  - JoinEventRequest: display_name
  - ProposeSessionRequest: title, description, track, format, duration_minutes
  - SetVotesRequest: votes
  - AttendanceVoteRequest: card_id, votes
  - VenueRequest, TimeSlotRequest
  - PlaceSessionRequest, UnplaceSessionRequest

# Response Types

  - CreateEventResponse: event_id, slug, organizer_key, event_url
  - JoinEventResponse: participant_id, participant_token
  - SetVotesResponse, CreditsResponse, AttendanceVoteResponse
  - ScheduleResponse: the venue × slot grid with conflicts and counts
  - FundingResponse: quadratic-funding shares of the session budget
  - ErrorResponse, InsufficientCreditsResponse

# Domain Types

  - Event: settings, status and schedule publish/edit flags
  - Participant: display name and private token
  - Session: proposal with derived votes and optional placement
  - Venue, TimeSlot
  - VoteAllocation, CreditBudget, StoredVote
  - ScheduleConflict, FundingShare

# Constants

Event statuses run draft → proposals_open → voting_open → scheduled →
live → concluded. Slot types are session, break and locked; only session
slots are Bookable. Vote kinds are pre and attendance.
*/
package models
