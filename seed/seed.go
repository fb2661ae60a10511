// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed loads a conference from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/schelling-point/auth"
	"github.com/danielhkuo/schelling-point/cliparse"
	"github.com/danielhkuo/schelling-point/models"
	"github.com/danielhkuo/schelling-point/schedule"
	"github.com/danielhkuo/schelling-point/store"
)

// VoterID owns the synthetic allocations that carry seeded vote counts.
const VoterID = "seed"

type File struct {
	Event    EventSpec     `yaml:"event"`
	Venues   []VenueSpec   `yaml:"venues"`
	Slots    []SlotSpec    `yaml:"slots"`
	Sessions []SessionSpec `yaml:"sessions"`
}

type EventSpec struct {
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	Description           string `yaml:"description"`
	Timezone              string `yaml:"timezone"`
	Status                string `yaml:"status"`
	PreVoteCredits        int    `yaml:"pre_vote_credits"`
	AttendanceVoteCredits int    `yaml:"attendance_vote_credits"`
	SessionBudget         string `yaml:"session_budget"`
}

type VenueSpec struct {
	Key      string   `yaml:"key"`
	Name     string   `yaml:"name"`
	Capacity int      `yaml:"capacity"`
	Features []string `yaml:"features"`
}

type SlotSpec struct {
	Key   string `yaml:"key"`
	Day   int    `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Type  string `yaml:"type"`
	Label string `yaml:"label"`
}

type SessionSpec struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	Host            string `yaml:"host"`
	Track           string `yaml:"track"`
	Format          string `yaml:"format"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Votes           int    `yaml:"votes"`
	Venue           string `yaml:"venue"`
	Slot            string `yaml:"slot"`
}

// Result identifies the seeded event. Created is false when the event
// already existed and nothing was written.
type Result struct {
	EventID      string
	Slug         string
	OrganizerKey string
	Created      bool
}

// Parse decodes a fixture, rejecting unknown fields.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// LoadFile parses path and writes it with Load.
func LoadFile(ctx context.Context, path string, st store.Store, cfg cliparse.Config) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	return Load(ctx, f, st, cfg)
}

// Load writes the fixture in one transaction. Placements go through the
// schedule grid, so a fixture cannot double-book a cell or use a break.
func Load(ctx context.Context, f File, st store.Store, cfg cliparse.Config) (Result, error) {
	event, err := f.event(cfg)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		EventID:      event.ID,
		Slug:         event.Slug,
		OrganizerKey: auth.GenerateOrganizerKey(event.ID, cfg.OrganizerKeySalt),
	}

	if _, err := st.GetEvent(ctx, event.ID); err == nil {
		slog.Info("seed event already present, skipping", "event_id", event.ID)
		return res, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return Result{}, err
	}

	venues, venueIDs, err := f.venues(event.ID)
	if err != nil {
		return Result{}, err
	}
	slots, slotIDs, err := f.slots(event.ID)
	if err != nil {
		return Result{}, err
	}
	sessions, err := f.sessions(event.ID, venues, slots, venueIDs, slotIDs)
	if err != nil {
		return Result{}, err
	}

	err = st.InTx(ctx, func(tx store.Store) error {
		if err := tx.UpsertEvent(ctx, event); err != nil {
			return err
		}
		for _, v := range venues {
			if err := tx.UpsertVenue(ctx, v); err != nil {
				return err
			}
		}
		for _, s := range slots {
			if err := tx.UpsertSlot(ctx, s); err != nil {
				return err
			}
		}
		for _, s := range sessions {
			if err := tx.UpsertSession(ctx, s); err != nil {
				return err
			}
			if s.Votes == 0 {
				continue
			}
			err := tx.UpsertVote(ctx, models.StoredVote{
				EventID:   event.ID,
				VoterID:   VoterID,
				SessionID: s.ID,
				Kind:      models.VotePre,
				VoteCount: s.Votes,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("write seed data: %w", err)
	}

	slog.Info("seeded event",
		"event_id", event.ID,
		"slug", event.Slug,
		"venues", len(venues),
		"slots", len(slots),
		"sessions", len(sessions),
	)
	res.Created = true
	return res, nil
}

func (f File) event(cfg cliparse.Config) (models.Event, error) {
	fe := f.Event
	if fe.Name == "" {
		return models.Event{}, errors.New("seed event name is required")
	}

	e := models.Event{
		ID:                    fe.ID,
		Name:                  fe.Name,
		Description:           fe.Description,
		Timezone:              fe.Timezone,
		Status:                fe.Status,
		PreVoteCredits:        fe.PreVoteCredits,
		AttendanceVoteCredits: fe.AttendanceVoteCredits,
		SessionBudget:         fe.SessionBudget,
	}
	if e.ID == "" {
		e.ID = auth.NewID()
	}
	if e.Timezone == "" {
		e.Timezone = "UTC"
	}
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	if !models.ValidStatus(e.Status) {
		return models.Event{}, fmt.Errorf("seed event status %q is invalid", e.Status)
	}
	if e.PreVoteCredits == 0 {
		e.PreVoteCredits = cfg.DefaultVoteCredits
	}
	if e.AttendanceVoteCredits == 0 {
		e.AttendanceVoteCredits = cfg.DefaultAttendanceCredits
	}
	if e.SessionBudget == "" {
		e.SessionBudget = "0"
	}
	budget, err := decimal.NewFromString(e.SessionBudget)
	if err != nil || budget.IsNegative() {
		return models.Event{}, fmt.Errorf("seed session budget %q is invalid", e.SessionBudget)
	}
	e.SessionBudget = budget.StringFixed(2)
	e.Slug = auth.GenerateEventSlug(e.ID, cfg.EventSlugSalt)
	return e, nil
}

func (f File) venues(eventID string) ([]models.Venue, map[string]string, error) {
	out := make([]models.Venue, 0, len(f.Venues))
	ids := make(map[string]string, len(f.Venues))
	for i, v := range f.Venues {
		if v.Name == "" || v.Capacity <= 0 {
			return nil, nil, fmt.Errorf("seed venue %d needs a name and positive capacity", i)
		}
		key := v.Key
		if key == "" {
			key = v.Name
		}
		if _, dup := ids[key]; dup {
			return nil, nil, fmt.Errorf("seed venue key %q is duplicated", key)
		}
		id := auth.NewID()
		ids[key] = id

		features := v.Features
		if features == nil {
			features = []string{}
		}
		out = append(out, models.Venue{ID: id, EventID: eventID, Name: v.Name, Capacity: v.Capacity, Features: features})
	}
	return out, ids, nil
}

func (f File) slots(eventID string) ([]models.TimeSlot, map[string]string, error) {
	out := make([]models.TimeSlot, 0, len(f.Slots))
	ids := make(map[string]string, len(f.Slots))
	for i, s := range f.Slots {
		if s.Key == "" || s.Start == "" || s.End == "" {
			return nil, nil, fmt.Errorf("seed slot %d needs key, start and end", i)
		}
		if _, dup := ids[s.Key]; dup {
			return nil, nil, fmt.Errorf("seed slot key %q is duplicated", s.Key)
		}
		typ := s.Type
		if typ == "" {
			typ = models.SlotSession
		}
		if !models.ValidSlotType(typ) {
			return nil, nil, fmt.Errorf("seed slot %q has invalid type %q", s.Key, typ)
		}
		day := s.Day
		if day == 0 {
			day = 1
		}
		id := auth.NewID()
		ids[s.Key] = id
		out = append(out, models.TimeSlot{ID: id, EventID: eventID, Day: day, Start: s.Start, End: s.End, Type: typ, Label: s.Label})
	}
	return out, ids, nil
}

func (f File) sessions(eventID string, venues []models.Venue, slots []models.TimeSlot, venueIDs, slotIDs map[string]string) ([]models.Session, error) {
	out := make([]models.Session, 0, len(f.Sessions))
	for i, s := range f.Sessions {
		if s.Title == "" || s.Host == "" {
			return nil, fmt.Errorf("seed session %d needs title and host", i)
		}
		if !models.ValidTrack(s.Track) || !models.ValidFormat(s.Format) {
			return nil, fmt.Errorf("seed session %q has invalid track or format", s.Title)
		}
		if s.DurationMinutes <= 0 || s.Votes < 0 {
			return nil, fmt.Errorf("seed session %q needs positive duration and non-negative votes", s.Title)
		}
		out = append(out, models.Session{
			ID:              auth.NewID(),
			EventID:         eventID,
			Title:           s.Title,
			Description:     s.Description,
			Host:            s.Host,
			Track:           s.Track,
			Format:          s.Format,
			DurationMinutes: s.DurationMinutes,
			Votes:           s.Votes,
		})
	}

	grid := schedule.Grid{Venues: venues, Slots: slots}
	for i, s := range f.Sessions {
		if s.Venue == "" && s.Slot == "" {
			continue
		}
		venueID, okV := venueIDs[s.Venue]
		slotID, okS := slotIDs[s.Slot]
		if !okV || !okS {
			return nil, fmt.Errorf("seed session %q references unknown venue %q or slot %q", s.Title, s.Venue, s.Slot)
		}
		if _, taken := schedule.CellOccupant(venueID, slotID, out); taken {
			return nil, fmt.Errorf("seed session %q double-books %s/%s", s.Title, s.Venue, s.Slot)
		}
		placed, err := grid.Place(out[i].ID, venueID, slotID, out)
		if err != nil {
			return nil, fmt.Errorf("seed session %q: %w", s.Title, err)
		}
		out = placed
	}
	return out, nil
}
