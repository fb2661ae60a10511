// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Schelling Point API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cfg, publisher)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Events (organizer routes require X-Organizer-Key):

	POST   /events                            - Create event
	GET    /events/{id}                       - Event details (id or slug)
	PUT    /events/{id}/status                - Change lifecycle status
	POST   /events/{id}/participants          - Join, returns participant token
	GET    /events/{id}/participants?q=       - Directory with hosting and spend counts
	DELETE /events/{id}/participants/{pid}    - Remove participant (organizer)

Sessions (proposals require X-Participant-Token):

	POST   /events/{id}/sessions       - Propose session
	GET    /events/{id}/sessions       - List with track, format, q, sort
	GET    /events/{id}/sessions/{sid} - One session
	DELETE /events/{id}/sessions/{sid} - Remove session (organizer)
	GET    /events/{id}/my-sessions    - Sessions hosted by the token holder

Voting:

	GET  /events/{id}/credits                         - Balance and allocations
	PUT  /events/{id}/sessions/{sid}/votes            - Set quadratic allocation
	POST /events/{id}/sessions/{sid}/attendance-votes - Kiosk vote (organizer)

Venues and slots (writes require X-Organizer-Key):

	GET/POST       /events/{id}/venues
	PUT/DELETE     /events/{id}/venues/{vid}
	GET/POST       /events/{id}/slots
	DELETE         /events/{id}/slots/{slid}

Schedule:

	GET  /events/{id}/schedule         - Grid, conflicts and counts
	POST /events/{id}/schedule/place   - Place session (evicts occupant)
	POST /events/{id}/schedule/unplace - Return session to the pool
	POST /events/{id}/schedule/publish - Publish and lock
	POST /events/{id}/schedule/edit    - Unlock a published schedule

Funding:

	GET /events/{id}/funding?kind=pre|attendance

All API routes are wrapped in middleware.WithLogging, which also records
request latency by route pattern.
*/
package router
