// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for the API. Collectors
// register with the default registry at init and are served by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schelling_point"

// Result labels
const (
	ResultOK                  = "ok"
	ResultInsufficientCredits = "insufficient_credits"
	ResultAlreadyVoted        = "already_voted"
	ResultLocked              = "locked"
	ResultRejected            = "rejected"
	ResultError               = "error"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	Allocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "allocations_total",
			Help:      "Vote allocation attempts by kind (pre, attendance) and result",
		},
		[]string{"kind", "result"},
	)

	CreditsSpent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "credits_spent_total",
			Help:      "Net credits committed by accepted allocations",
		},
		[]string{"kind"},
	)

	ScheduleMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "mutations_total",
			Help:      "Schedule changes by action (place, unplace, publish, edit) and result",
		},
		[]string{"action", "result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handed to the publisher by type and result",
		},
		[]string{"type", "result"},
	)
)

// ObserveRequest records one finished request. An empty route means the
// mux matched nothing.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordAllocation counts one allocation attempt. delta is the change in
// credits spent and is only added on success.
func RecordAllocation(kind, result string, delta int) {
	Allocations.WithLabelValues(kind, result).Inc()
	if result == ResultOK && delta > 0 {
		CreditsSpent.WithLabelValues(kind).Add(float64(delta))
	}
}

func RecordScheduleMutation(action, result string) {
	ScheduleMutations.WithLabelValues(action, result).Inc()
}

func RecordPublish(eventType, result string) {
	EventsPublished.WithLabelValues(eventType, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
