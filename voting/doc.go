// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the quadratic voting credit ledger.

# Cost

Casting n votes on one session costs n² credits:

	voting.Cost(5) // 25

The same cost applies to pre-event votes and attendance votes.

# Allocations

A participant's allocations map session ids to vote counts. SetAllocation
returns a new set and never mutates its input:

	next, err := voting.SetAllocation("s1", 4, current, 100)
	var ice *voting.InsufficientCreditsError
	if errors.As(err, &ice) {
		// ice.Shortfall credits missing
	}

Keeping or lowering a count always succeeds.

# Quadratic Funding

Distribute splits a session budget by (Σ sqrt(credits))² per session, so
broad support outweighs concentrated spend.
*/
package voting
