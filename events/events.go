// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Type string

const (
	VoteAllocated     Type = "vote.allocated"
	VoteAttendance    Type = "vote.attendance"
	SchedulePublished Type = "schedule.published"
)

// Event is the envelope written to the bus. EventID is the conference
// event and doubles as the partition key.
type Event struct {
	Type       Type      `json:"type"`
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

type AllocationPayload struct {
	VoterID     string `json:"voter_id"`
	SessionID   string `json:"session_id"`
	Votes       int    `json:"votes"`
	CreditsCost int    `json:"credits_cost"`
	Remaining   int    `json:"remaining"`
}

type SchedulePayload struct {
	Scheduled   int `json:"scheduled"`
	Unscheduled int `json:"unscheduled"`
	Conflicts   int `json:"conflicts"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns a Kafka publisher when brokers are given, otherwise one that
// only logs.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// PublishTimeout bounds how long Emit holds up the caller.
var PublishTimeout = 2 * time.Second

// Emit stamps and publishes e within PublishTimeout. The publish keeps the
// request's values but not its cancellation, since the change it reports is
// already committed. Failures are logged and swallowed so that a broker
// outage never fails the request that caused the event.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := p.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish domain event",
			"type", e.Type,
			"event_id", e.EventID,
			"error", err,
		)
	}
}

type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	slog.InfoContext(ctx, "domain event",
		"type", e.Type,
		"event_id", e.EventID,
		"payload", e.Payload,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory. Err, when set, is returned
// from Publish instead of recording.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType filters recorded events.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
