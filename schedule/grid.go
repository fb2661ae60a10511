// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/schelling-point/models"
)

// OverbookingTolerance is how far expected attendance may exceed venue
// capacity before a placement is reported as a conflict.
const OverbookingTolerance = 1.2

var (
	ErrEditingLocked   = errors.New("schedule is published; enter edit mode to change it")
	ErrNotPublished    = errors.New("schedule is not published")
	ErrSlotNotBookable = errors.New("time slot does not accept sessions")
	ErrSessionNotFound = errors.New("session not found")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrSlotNotFound    = errors.New("time slot not found")
)

// State holds the publish/edit flags of an event schedule.
type State struct {
	Published bool
	Editing   bool
}

// Mutable reports whether place and unplace are currently allowed.
func (s State) Mutable() bool {
	return !s.Published || s.Editing
}

// Publish returns the state after publishing. Publishing always leaves
// edit mode.
func (s State) Publish() State {
	return State{Published: true, Editing: false}
}

// Edit returns the state after entering edit mode on a published schedule.
func (s State) Edit() (State, error) {
	if !s.Published {
		return s, ErrNotPublished
	}
	return State{Published: true, Editing: true}, nil
}

// Grid is a read-only view of an event's venues, slots and edit state.
// Its methods take a session snapshot and return a new one.
type Grid struct {
	State  State
	Venues []models.Venue
	Slots  []models.TimeSlot
}

// Place assigns sessionID to the (venueID, slotID) cell. Any other session
// already in that cell is returned to the unscheduled pool.
func (g Grid) Place(sessionID, venueID, slotID string, sessions []models.Session) ([]models.Session, error) {
	if !g.State.Mutable() {
		return nil, ErrEditingLocked
	}
	if indexOf(sessions, sessionID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if _, ok := g.venue(venueID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrVenueNotFound, venueID)
	}
	slot, ok := g.slot(slotID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	if !slot.Bookable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrSlotNotBookable, slotID, slot.Type)
	}

	out := make([]models.Session, len(sessions))
	for i, s := range sessions {
		switch {
		case s.ID == sessionID:
			s.VenueID, s.SlotID = venueID, slotID
		case s.VenueID == venueID && s.SlotID == slotID:
			s.VenueID, s.SlotID = "", ""
		}
		out[i] = s
	}
	return out, nil
}

// Unplace returns sessionID to the unscheduled pool. Unplacing an
// unscheduled session is a no-op.
func (g Grid) Unplace(sessionID string, sessions []models.Session) ([]models.Session, error) {
	if !g.State.Mutable() {
		return nil, ErrEditingLocked
	}
	if indexOf(sessions, sessionID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	for i := range out {
		if out[i].ID == sessionID {
			out[i].VenueID, out[i].SlotID = "", ""
		}
	}
	return out, nil
}

// Conflicts is a convenience wrapper over the package-level Conflicts using
// the grid's venues.
func (g Grid) Conflicts(sessions []models.Session) []models.ScheduleConflict {
	return Conflicts(sessions, g.Venues)
}

func (g Grid) venue(id string) (models.Venue, bool) {
	for _, v := range g.Venues {
		if v.ID == id {
			return v, true
		}
	}
	return models.Venue{}, false
}

func (g Grid) slot(id string) (models.TimeSlot, bool) {
	for _, s := range g.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return models.TimeSlot{}, false
}

func indexOf(sessions []models.Session, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}
