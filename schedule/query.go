// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"fmt"

	"github.com/danielhkuo/schelling-point/models"
)

// Unscheduled returns sessions missing a venue or slot, in input order.
func Unscheduled(sessions []models.Session) []models.Session {
	out := []models.Session{}
	for _, s := range sessions {
		if !s.Scheduled() {
			out = append(out, s)
		}
	}
	return out
}

// Scheduled returns sessions with both a venue and a slot, in input order.
func Scheduled(sessions []models.Session) []models.Session {
	out := []models.Session{}
	for _, s := range sessions {
		if s.Scheduled() {
			out = append(out, s)
		}
	}
	return out
}

// CellOccupant returns the session placed at (venueID, slotID), if any.
func CellOccupant(venueID, slotID string, sessions []models.Session) (models.Session, bool) {
	for _, s := range sessions {
		if s.Scheduled() && s.VenueID == venueID && s.SlotID == slotID {
			return s, true
		}
	}
	return models.Session{}, false
}

// Conflicts reports scheduled sessions whose votes exceed their venue's
// capacity times OverbookingTolerance. Sessions in unknown venues are
// skipped.
func Conflicts(sessions []models.Session, venues []models.Venue) []models.ScheduleConflict {
	byID := make(map[string]models.Venue, len(venues))
	for _, v := range venues {
		byID[v.ID] = v
	}

	out := []models.ScheduleConflict{}
	for _, s := range Scheduled(sessions) {
		v, ok := byID[s.VenueID]
		if !ok {
			continue
		}
		if Overbooked(s.Votes, v.Capacity) {
			out = append(out, models.ScheduleConflict{
				Session: s,
				Venue:   v,
				Reason:  fmt.Sprintf("Expected attendance (%d votes) exceeds venue capacity (%d)", s.Votes, v.Capacity),
			})
		}
	}
	return out
}

// Overbooked reports whether votes exceed capacity beyond the tolerance.
func Overbooked(votes, capacity int) bool {
	limit := float64(capacity) * OverbookingTolerance
	return float64(votes)-limit > 1e-9
}

// Summary counts for the schedule header.
type Summary = models.ScheduleSummary

// Summarize counts scheduled, unscheduled and conflicting sessions.
func Summarize(sessions []models.Session, venues []models.Venue) Summary {
	sched := len(Scheduled(sessions))
	return Summary{
		Total:       len(sessions),
		Scheduled:   sched,
		Unscheduled: len(sessions) - sched,
		Conflicts:   len(Conflicts(sessions, venues)),
	}
}
