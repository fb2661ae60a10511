package voting

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/schelling-point/models"
)

func TestCost(t *testing.T) {
	tests := []struct {
		votes int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 4},
		{5, 25},
		{10, 100},
		{-3, 9},
		{1 << 32, math.MaxInt},
		{3037000500, math.MaxInt},
	}

	for _, tt := range tests {
		if got := Cost(tt.votes); got != tt.want {
			t.Errorf("Cost(%d) = %d, want %d", tt.votes, got, tt.want)
		}
	}
}

func TestSetAllocation(t *testing.T) {
	tests := []struct {
		name          string
		sessionID     string
		requested     int
		current       Allocations
		budget        int
		want          Allocations
		wantShortfall int
		wantErr       error
	}{
		{
			name:      "increase to exactly the budget",
			sessionID: "A",
			requested: 10,
			current:   Allocations{"A": 3},
			budget:    100,
			want:      Allocations{"A": 10},
		},
		{
			name:          "increase past the budget",
			sessionID:     "A",
			requested:     11,
			current:       Allocations{"A": 3},
			budget:        100,
			wantShortfall: 21,
		},
		{
			name:          "other sessions count toward spend",
			sessionID:     "B",
			requested:     7,
			current:       Allocations{"A": 6},
			budget:        80,
			wantShortfall: 5,
		},
		{
			name:      "same count is a no-op",
			sessionID: "A",
			requested: 10,
			current:   Allocations{"A": 10},
			budget:    100,
			want:      Allocations{"A": 10},
		},
		{
			name:      "decrease always succeeds",
			sessionID: "A",
			requested: 2,
			current:   Allocations{"A": 9, "B": 8},
			budget:    50,
			want:      Allocations{"A": 2, "B": 8},
		},
		{
			name:      "reset to zero removes the entry",
			sessionID: "A",
			requested: 0,
			current:   Allocations{"A": 3, "B": 1},
			budget:    100,
			want:      Allocations{"B": 1},
		},
		{
			name:      "new session from empty set",
			sessionID: "C",
			requested: 4,
			current:   nil,
			budget:    100,
			want:      Allocations{"C": 4},
		},
		{
			name:          "square would wrap to zero",
			sessionID:     "A",
			requested:     1 << 32,
			current:       Allocations{},
			budget:        100,
			wantShortfall: math.MaxInt - 100,
		},
		{
			name:          "square would wrap negative",
			sessionID:     "A",
			requested:     3037000500,
			current:       Allocations{"B": 2},
			budget:        100,
			wantShortfall: math.MaxInt - 100,
		},
		{
			name:          "count within budget but square saturates",
			sessionID:     "A",
			requested:     3037000500,
			current:       Allocations{},
			budget:        math.MaxInt - 1,
			wantShortfall: 1,
		},
		{
			name:      "negative votes",
			sessionID: "A",
			requested: -1,
			current:   Allocations{},
			budget:    100,
			wantErr:   ErrNegativeVotes,
		},
		{
			name:      "missing session id",
			requested: 1,
			current:   Allocations{},
			budget:    100,
			wantErr:   ErrMissingSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.current.Clone()

			got, err := SetAllocation(tt.sessionID, tt.requested, tt.current, tt.budget)

			if diff := cmp.Diff(before, tt.current.Clone()); diff != "" {
				t.Errorf("input allocations mutated (-before +after):\n%s", diff)
			}

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetAllocation() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantShortfall > 0:
				var ice *InsufficientCreditsError
				if !errors.As(err, &ice) {
					t.Fatalf("SetAllocation() error = %v, want InsufficientCreditsError", err)
				}
				if ice.Shortfall != tt.wantShortfall {
					t.Errorf("Shortfall = %d, want %d", ice.Shortfall, tt.wantShortfall)
				}
				if want := Remaining(tt.budget, tt.current); ice.Remaining != want {
					t.Errorf("Remaining = %d, want %d", ice.Remaining, want)
				}
				if got != nil {
					t.Errorf("expected nil allocations on failure, got %v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("SetAllocation() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SetAllocation() mismatch (-want +got):\n%s", diff)
			}
			if Spent(got) > tt.budget && tt.requested > tt.current[tt.sessionID] {
				t.Errorf("spent %d exceeds budget %d after increase", Spent(got), tt.budget)
			}
		})
	}
}

func TestSetAllocation_DecreaseWithLoweredBudget(t *testing.T) {
	// Spend already exceeds a budget that was lowered after voting.
	current := Allocations{"A": 10}

	got, err := SetAllocation("A", 9, current, 50)
	if err != nil {
		t.Fatalf("decrease rejected: %v", err)
	}
	if got["A"] != 9 {
		t.Errorf("expected 9 votes, got %d", got["A"])
	}

	if _, err := SetAllocation("A", 10, current, 50); err != nil {
		t.Errorf("keeping the same count rejected: %v", err)
	}
}

func TestSpentSaturates(t *testing.T) {
	a := Allocations{"A": 3037000499, "B": 3037000499}
	if got := Spent(a); got != math.MaxInt {
		t.Errorf("Spent() = %d, want math.MaxInt", got)
	}
	if got := Remaining(100, a); got >= 0 {
		t.Errorf("Remaining() = %d, want negative", got)
	}
}

func TestRemainingAndBalance(t *testing.T) {
	a := Allocations{"A": 3, "B": 2, "C": 1}

	if got := Spent(a); got != 14 {
		t.Errorf("Spent() = %d, want 14", got)
	}
	if got := Remaining(100, a); got != 86 {
		t.Errorf("Remaining() = %d, want 86", got)
	}

	want := models.CreditBudget{TotalCredits: 100, SpentCredits: 14, RemainingCredits: 86}
	if diff := cmp.Diff(want, Balance(100, a)); diff != "" {
		t.Errorf("Balance() mismatch (-want +got):\n%s", diff)
	}
}

func TestCanIncrementAndMaxVotes(t *testing.T) {
	a := Allocations{"A": 6, "B": 7} // 36 + 49 = 85

	if !CanIncrement("A", a, 100) {
		t.Error("A to 7 votes spends 98 of 100, expected allowed")
	}
	if CanIncrement("A", Allocations{"A": 7, "B": 7}, 100) {
		t.Error("A to 8 votes spends 113 of 100, expected rejected")
	}
	if got := MaxVotes("A", a, 100); got != 7 {
		t.Errorf("MaxVotes(A) = %d, want 7", got)
	}
	if got := MaxVotes("C", a, 100); got != 3 {
		t.Errorf("MaxVotes(C) = %d, want 3", got)
	}
	// Existing votes are never reported above the cap.
	if got := MaxVotes("A", Allocations{"A": 10}, 50); got != 10 {
		t.Errorf("MaxVotes over lowered budget = %d, want 10", got)
	}
}

func TestFromStoredAndList(t *testing.T) {
	rows := []models.StoredVote{
		{SessionID: "b", VoteCount: 2},
		{SessionID: "a", VoteCount: 3},
		{SessionID: "z", VoteCount: 0},
	}

	a := FromStored(rows)
	want := []models.VoteAllocation{
		{SessionID: "a", VoteCount: 3, CreditCost: 9},
		{SessionID: "b", VoteCount: 2, CreditCost: 4},
	}
	if diff := cmp.Diff(want, a.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}
