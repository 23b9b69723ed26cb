package engine

import (
	"fmt"
	"math"
	"math/bits"

	"stakepool/internal/payout"
)

// PrizePool is the amount the payout structure is applied to: every paid
// entry's cost, or the guarantee when turnout falls short. Fees never count.
func (t *Tournament) PrizePool() int64 {
	hi, lo := bits.Mul64(uint64(t.TotalEntries), uint64(t.EntryCost))
	collected := int64(math.MaxInt64)
	if hi == 0 && lo <= math.MaxInt64 {
		collected = int64(lo)
	}
	return max(collected, t.Guarantee)
}

// PlacePercent is the per-mille share for a finishing place, 0 when out of the money.
func PlacePercent(structure []int, place int) int {
	if place < 1 || place > len(structure) {
		return 0
	}
	return structure[place-1]
}

// PrizeAmount floors pool*permille/1000 without overflowing int64.
func PrizeAmount(pool int64, permille int) int64 {
	if pool <= 0 || permille <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(pool), uint64(permille))
	if hi >= payout.PerMille {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, payout.PerMille)
	return int64(q)
}

// PrizeFor is what a player finishing in place would be paid right now.
func (t *Tournament) PrizeFor(place int) int64 {
	return PrizeAmount(t.PrizePool(), PlacePercent(t.PayoutStructure, place))
}

// structureProblem describes why a payout structure is unusable, or returns "".
func structureProblem(structure []int) string {
	sum := 0
	for i, p := range structure {
		if p < 0 {
			return fmt.Sprintf("place %d has negative share %d", i+1, p)
		}
		sum += p
		if sum > payout.PerMille {
			return fmt.Sprintf("payouts sum past %d per-mille", payout.PerMille)
		}
	}
	return ""
}
