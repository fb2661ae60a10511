// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/schelling-point/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflicts with existing record")
)

type EventStore interface {
	GetEvent(ctx context.Context, id string) (models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpsertEvent(ctx context.Context, e models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	// LockEvent blocks other writers on the event until the enclosing
	// transaction ends.
	LockEvent(ctx context.Context, id string) error
}

type ParticipantStore interface {
	GetParticipant(ctx context.Context, id string) (models.Participant, error)
	GetParticipantByToken(ctx context.Context, eventID, token string) (models.Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error)
	UpsertParticipant(ctx context.Context, p models.Participant) error
	DeleteParticipant(ctx context.Context, id string) error
	LockParticipant(ctx context.Context, id string) error
}

// SessionStore lists sessions in insertion order with Votes derived from
// pre-event allocations.
type SessionStore interface {
	GetSession(ctx context.Context, eventID, id string) (models.Session, error)
	ListSessions(ctx context.Context, eventID string) ([]models.Session, error)
	UpsertSession(ctx context.Context, s models.Session) error
	DeleteSession(ctx context.Context, eventID, id string) error
	// SetPlacement writes venue and slot; empty strings clear both.
	SetPlacement(ctx context.Context, eventID, sessionID, venueID, slotID string) error
}

type VenueStore interface {
	GetVenue(ctx context.Context, eventID, id string) (models.Venue, error)
	ListVenues(ctx context.Context, eventID string) ([]models.Venue, error)
	UpsertVenue(ctx context.Context, v models.Venue) error
	// DeleteVenue unplaces the venue's sessions before removing it.
	DeleteVenue(ctx context.Context, eventID, id string) error
}

type SlotStore interface {
	GetSlot(ctx context.Context, eventID, id string) (models.TimeSlot, error)
	ListSlots(ctx context.Context, eventID string) ([]models.TimeSlot, error)
	UpsertSlot(ctx context.Context, t models.TimeSlot) error
	// DeleteSlot unplaces the slot's sessions before removing it.
	DeleteSlot(ctx context.Context, eventID, id string) error
}

type AllocationStore interface {
	ListVotes(ctx context.Context, eventID, voterID, kind string) ([]models.StoredVote, error)
	ListEventVotes(ctx context.Context, eventID, kind string) ([]models.StoredVote, error)
	GetVote(ctx context.Context, voterID, sessionID, kind string) (models.StoredVote, error)
	// UpsertVote stores v; a zero VoteCount deletes the row.
	UpsertVote(ctx context.Context, v models.StoredVote) error
}

// Store is the persistence boundary for the whole API.
type Store interface {
	EventStore
	ParticipantStore
	SessionStore
	VenueStore
	SlotStore
	AllocationStore

	// InTx runs fn against a transactional Store. fn's error rolls back.
	InTx(ctx context.Context, fn func(Store) error) error
}
