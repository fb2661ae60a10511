// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/danielhkuo/schelling-point/models"
)

var (
	ErrNegativeVotes  = errors.New("vote count must be non-negative")
	ErrInvalidBudget  = errors.New("credit budget must be positive")
	ErrMissingSession = errors.New("session id is required")
	ErrAlreadyVoted   = errors.New("already voted on this session")
)

// InsufficientCreditsError is returned when an allocation would spend more
// credits than the budget holds. Shortfall is the number of extra credits
// the request would need.
type InsufficientCreditsError struct {
	SessionID string
	Requested int
	Budget    int
	Spent     int // spend the rejected request would have produced
	Shortfall int
	Remaining int // credits left before the request
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: %d votes on %s needs %d more credits", e.Requested, e.SessionID, e.Shortfall)
}

// Allocations maps session id to vote count for one participant.
// Sessions with zero votes are absent.
type Allocations map[string]int

// Cost returns the credit cost of casting votes on a single session.
// Counts whose square does not fit in an int cost math.MaxInt.
func Cost(votes int) int {
	if votes < 0 {
		votes = -votes
	}
	if votes != 0 && votes > math.MaxInt/votes {
		return math.MaxInt
	}
	return votes * votes
}

// Spent returns the total credits consumed by a set of allocations,
// saturating at math.MaxInt.
func Spent(a Allocations) int {
	total := 0
	for _, v := range a {
		c := Cost(v)
		if c > math.MaxInt-total {
			return math.MaxInt
		}
		total += c
	}
	return total
}

// Remaining returns the credits left after the given allocations. The result
// is negative only if the budget was lowered below existing spend.
func Remaining(budget int, a Allocations) int {
	return budget - Spent(a)
}

// Balance summarizes a participant's budget.
func Balance(budget int, a Allocations) models.CreditBudget {
	spent := Spent(a)
	return models.CreditBudget{
		TotalCredits:     budget,
		SpentCredits:     spent,
		RemainingCredits: budget - spent,
	}
}

// SetAllocation returns a copy of current with sessionID set to requested
// votes. The input is never modified. A request that keeps or lowers the
// existing count always succeeds; an increase fails with
// *InsufficientCreditsError when total spend would exceed budget.
func SetAllocation(sessionID string, requested int, current Allocations, budget int) (Allocations, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	if requested < 0 {
		return nil, ErrNegativeVotes
	}

	next := current.Clone()
	if requested == 0 {
		delete(next, sessionID)
	} else {
		next[sessionID] = requested
	}

	if requested <= current[sessionID] {
		return next, nil
	}

	// Any count above the budget costs more than the budget, so it is
	// rejected before its square is summed.
	newSpent := math.MaxInt
	if requested <= budget {
		newSpent = Spent(next)
	}
	if newSpent > budget {
		shortfall := newSpent - budget
		if shortfall < 0 {
			shortfall = math.MaxInt
		}
		return nil, &InsufficientCreditsError{
			SessionID: sessionID,
			Requested: requested,
			Budget:    budget,
			Spent:     newSpent,
			Shortfall: shortfall,
			Remaining: Remaining(budget, current),
		}
	}
	return next, nil
}

// CanIncrement reports whether one more vote on sessionID fits the budget.
func CanIncrement(sessionID string, current Allocations, budget int) bool {
	_, err := SetAllocation(sessionID, current[sessionID]+1, current, budget)
	return err == nil
}

// MaxVotes returns the highest vote count sessionID could hold given the
// other allocations.
func MaxVotes(sessionID string, current Allocations, budget int) int {
	others := Spent(current) - Cost(current[sessionID])
	left := budget - others
	if left <= 0 {
		return current[sessionID]
	}
	v := int(math.Sqrt(float64(left)))
	for v > 0 && Cost(v) > left {
		v--
	}
	for Cost(v+1) <= left {
		v++
	}
	if v < current[sessionID] {
		return current[sessionID]
	}
	return v
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (a Allocations) Clone() Allocations {
	out := make(Allocations, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// List returns the allocations sorted by session id.
func (a Allocations) List() []models.VoteAllocation {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.VoteAllocation, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.VoteAllocation{
			SessionID:  id,
			VoteCount:  a[id],
			CreditCost: Cost(a[id]),
		})
	}
	return out
}

// FromStored builds an Allocations set from persisted rows.
func FromStored(rows []models.StoredVote) Allocations {
	out := make(Allocations, len(rows))
	for _, r := range rows {
		if r.VoteCount > 0 {
			out[r.SessionID] = r.VoteCount
		}
	}
	return out
}
