// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule places sessions onto a venue × time-slot grid.

# Placement

A Grid carries the venues, slots and publish/edit state of one event:

	g := schedule.Grid{State: state, Venues: venues, Slots: slots}
	next, err := g.Place(sessionID, venueID, slotID, sessions)

Place evicts whatever session already occupies the cell, so a cell never
holds more than one session. Only slots of type "session" accept
placements. Unplace is idempotent.

# Edit Lock

Once published, Place and Unplace return ErrEditingLocked until the
schedule enters edit mode. Publishing again leaves edit mode.

# Conflicts

A scheduled session conflicts with its venue when its votes exceed
capacity × OverbookingTolerance (1.2).
*/
package schedule
