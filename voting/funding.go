// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Contribution is the credits one voter spent on one session.
type Contribution struct {
	SessionID string
	VoterID   string
	Credits   int
}

// Share is a session's slice of a quadratic funding pool.
type Share struct {
	SessionID  string
	Voters     int
	Credits    int
	Score      float64
	Percentage float64
	Amount     decimal.Decimal
}

// QFScore returns (Σ sqrt(c))² over the given per-voter credits.
func QFScore(credits []int) float64 {
	var sum float64
	for _, c := range credits {
		if c > 0 {
			sum += math.Sqrt(float64(c))
		}
	}
	return sum * sum
}

// Distribute splits pool across sessions in proportion to their quadratic
// funding scores. Amounts are rounded to cents and the rounding remainder
// goes to the highest-ranked share, so amounts always sum to pool. Shares
// are ordered by score descending, then session id.
func Distribute(pool decimal.Decimal, contributions []Contribution) []Share {
	bySession := make(map[string][]int)
	var order []string
	for _, c := range contributions {
		if c.Credits <= 0 {
			continue
		}
		if _, ok := bySession[c.SessionID]; !ok {
			order = append(order, c.SessionID)
		}
		bySession[c.SessionID] = append(bySession[c.SessionID], c.Credits)
	}

	shares := make([]Share, 0, len(order))
	var total float64
	for _, id := range order {
		credits := bySession[id]
		spent := 0
		for _, c := range credits {
			spent += c
		}
		s := Share{
			SessionID: id,
			Voters:    len(credits),
			Credits:   spent,
			Score:     QFScore(credits),
			Amount:    decimal.Zero,
		}
		total += s.Score
		shares = append(shares, s)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Score != shares[j].Score {
			return shares[i].Score > shares[j].Score
		}
		return shares[i].SessionID < shares[j].SessionID
	})

	if total == 0 || len(shares) == 0 {
		return shares
	}

	totalDec := decimal.NewFromFloat(total)
	allocated := decimal.Zero
	for i := range shares {
		ratio := decimal.NewFromFloat(shares[i].Score).Div(totalDec)
		shares[i].Amount = pool.Mul(ratio).Round(2)
		shares[i].Percentage = math.Round(shares[i].Score/total*10000) / 100
		allocated = allocated.Add(shares[i].Amount)
	}
	shares[0].Amount = shares[0].Amount.Add(pool.Sub(allocated))

	return shares
}
