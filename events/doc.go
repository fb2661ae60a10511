// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events publishes domain events when votes are cast and schedules
are published.

	pub := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer pub.Close()
	events.Emit(ctx, pub, events.Event{Type: events.VoteAllocated, EventID: id, Payload: p})

With no brokers configured, events are written to the log instead.
*/
package events
