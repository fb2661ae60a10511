// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers and the token scheme for events.

# Organizer Keys

Organizer keys use HMAC-SHA256 over the event ID:

	key := auth.GenerateOrganizerKey(eventID, salt)
	err := auth.ValidateOrganizerKey(eventID, key, salt)

Keys are deterministic, so they are never stored. They are sent in the
X-Organizer-Key header.

# Participant Tokens

Joining an event issues a random 192-bit token:

	token, err := auth.GenerateParticipantToken()

Participants send it in the X-Participant-Token header.

# Event Slugs

	slug := auth.GenerateEventSlug(eventID, salt)

Slugs are base62 and short enough to print on a badge.

# Attendance Cards

Kiosk votes are keyed by HashCardID, never by the raw card number.
*/
package auth
