// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAllocation(t *testing.T) {
	okBefore := testutil.ToFloat64(Allocations.WithLabelValues("pre", ResultOK))
	shortBefore := testutil.ToFloat64(Allocations.WithLabelValues("pre", ResultInsufficientCredits))
	spentBefore := testutil.ToFloat64(CreditsSpent.WithLabelValues("pre"))

	RecordAllocation("pre", ResultOK, 9)
	RecordAllocation("pre", ResultOK, -4) // decrease
	RecordAllocation("pre", ResultInsufficientCredits, 21)

	if got := testutil.ToFloat64(Allocations.WithLabelValues("pre", ResultOK)) - okBefore; got != 2 {
		t.Errorf("ok allocations delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(Allocations.WithLabelValues("pre", ResultInsufficientCredits)) - shortBefore; got != 1 {
		t.Errorf("insufficient allocations delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CreditsSpent.WithLabelValues("pre")) - spentBefore; got != 9 {
		t.Errorf("credits spent delta = %v, want 9", got)
	}
}

func TestRecordScheduleMutation(t *testing.T) {
	before := testutil.ToFloat64(ScheduleMutations.WithLabelValues("place", ResultLocked))
	RecordScheduleMutation("place", ResultLocked)
	if got := testutil.ToFloat64(ScheduleMutations.WithLabelValues("place", ResultLocked)) - before; got != 1 {
		t.Errorf("mutations delta = %v, want 1", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest(http.MethodGet, "GET /events/{id}", http.StatusOK, 15*time.Millisecond)
	ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	RecordPublish("vote.allocated", ResultOK)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	for _, want := range []string{
		`schelling_point_http_request_duration_seconds_count{method="GET",route="GET /events/{id}",status="200"}`,
		`route="unmatched"`,
		`schelling_point_events_published_total{result="ok",type="vote.allocated"}`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
