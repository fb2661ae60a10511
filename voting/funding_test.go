package voting

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestQFScore(t *testing.T) {
	tests := []struct {
		name    string
		credits []int
		want    float64
	}{
		{"no voters", nil, 0},
		{"single voter", []int{9}, 9},
		{"two equal voters", []int{4, 4}, 16},
		{"mixed", []int{1, 4, 9}, 36},
		{"zero credits ignored", []int{0, 16}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QFScore(tt.credits); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("QFScore(%v) = %v, want %v", tt.credits, got, tt.want)
			}
		})
	}
}

func TestDistribute_BroadSupportBeatsConcentration(t *testing.T) {
	var contribs []Contribution
	for i := 0; i < 100; i++ {
		contribs = append(contribs, Contribution{SessionID: "broad", VoterID: fmt.Sprintf("b%d", i), Credits: 10})
	}
	for i := 0; i < 10; i++ {
		contribs = append(contribs, Contribution{SessionID: "narrow", VoterID: fmt.Sprintf("n%d", i), Credits: 100})
	}

	shares := Distribute(decimal.NewFromInt(10000), contribs)
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].SessionID != "broad" {
		t.Fatalf("expected broad support first, got %s", shares[0].SessionID)
	}
	if shares[0].Voters != 100 || shares[0].Credits != 1000 {
		t.Errorf("broad share voters/credits = %d/%d, want 100/1000", shares[0].Voters, shares[0].Credits)
	}
	if !(shares[0].Amount.GreaterThan(shares[1].Amount)) {
		t.Errorf("broad amount %s should exceed narrow amount %s", shares[0].Amount, shares[1].Amount)
	}
	// 100000 vs 10000 score: 10/11 and 1/11 of the pool.
	if !shares[1].Amount.Equal(decimal.RequireFromString("909.09")) {
		t.Errorf("narrow amount = %s, want 909.09", shares[1].Amount)
	}
}

func TestDistribute_AmountsSumToPool(t *testing.T) {
	contribs := []Contribution{
		{SessionID: "a", VoterID: "1", Credits: 1},
		{SessionID: "b", VoterID: "1", Credits: 1},
		{SessionID: "c", VoterID: "1", Credits: 1},
	}
	pool := decimal.NewFromInt(100)

	shares := Distribute(pool, contribs)

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(pool) {
		t.Errorf("amounts sum to %s, want %s", sum, pool)
	}
	// Equal scores are ordered by session id; the remainder cent goes first.
	if shares[0].SessionID != "a" || !shares[0].Amount.Equal(decimal.RequireFromString("33.34")) {
		t.Errorf("first share = %s %s, want a 33.34", shares[0].SessionID, shares[0].Amount)
	}
}

func TestDistribute_NoVotes(t *testing.T) {
	shares := Distribute(decimal.NewFromInt(500), []Contribution{{SessionID: "a", Credits: 0}})
	if len(shares) != 0 {
		t.Errorf("expected no shares, got %d", len(shares))
	}
}
