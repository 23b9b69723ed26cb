// Package payout selects a finishing-place split for a tournament field size.
package payout

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// PerMille is the denominator every normalized split is expressed in.
const PerMille = 1000

var ErrInvalidTable = errors.New("invalid_payout_table")

// Unit is the scale raw tier payouts are written in.
type Unit string

const (
	UnitPerMille    Unit = "permille"
	UnitPercent     Unit = "percent"
	UnitBasisPoints Unit = "basis_points"
)

func (u Unit) scale() (float64, error) {
	switch u {
	case "", UnitPerMille:
		return 1, nil
	case UnitPercent:
		return 10, nil
	case UnitBasisPoints:
		return 0.1, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidTable, u)
	}
}

// Tier holds the split used for fields of at most MaxPlayers entrants.
type Tier struct {
	MaxPlayers int
	Payouts    []float64
}

type tier struct {
	maxPlayers int
	split      []int
}

// Table is an immutable, validated payout table.
type Table struct {
	tiers []tier
}

// New normalizes tiers written in unit to per-mille and validates them.
func New(unit Unit, tiers []Tier) (*Table, error) {
	scale, err := unit.scale()
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	out := make([]tier, 0, len(tiers))
	seen := map[int]bool{}
	for _, t := range tiers {
		if t.MaxPlayers <= 0 {
			return nil, fmt.Errorf("%w: max_players must be positive, got %d", ErrInvalidTable, t.MaxPlayers)
		}
		if seen[t.MaxPlayers] {
			return nil, fmt.Errorf("%w: duplicate tier for %d players", ErrInvalidTable, t.MaxPlayers)
		}
		seen[t.MaxPlayers] = true
		split, err := Normalize(t.Payouts, scale)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", t.MaxPlayers, err)
		}
		out = append(out, tier{maxPlayers: t.MaxPlayers, split: split})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].maxPlayers < out[j].maxPlayers })
	return &Table{tiers: out}, nil
}

// Normalize converts raw payouts to whole per-mille, flooring fractions.
func Normalize(payouts []float64, scale float64) ([]int, error) {
	split := make([]int, len(payouts))
	sum := 0
	for i, p := range payouts {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: payout %d is %v", ErrInvalidTable, i, p)
		}
		// Tolerate binary float noise such as 11.5*10 = 114.99999.
		split[i] = int(math.Floor(p*scale + 1e-9))
		sum += split[i]
	}
	if sum > PerMille {
		return nil, fmt.Errorf("%w: payouts sum to %d per-mille", ErrInvalidTable, sum)
	}
	return split, nil
}

// Select returns the split of the smallest tier covering fieldSize, or of the
// largest tier when the field outgrows every threshold.
func (t *Table) Select(fieldSize int) []int {
	chosen := t.tiers[len(t.tiers)-1]
	for _, tr := range t.tiers {
		if tr.maxPlayers >= fieldSize {
			chosen = tr
			break
		}
	}
	out := make([]int, len(chosen.split))
	copy(out, chosen.split)
	return out
}

// Thresholds lists the tier ceilings in ascending order.
func (t *Table) Thresholds() []int {
	out := make([]int, len(t.tiers))
	for i, tr := range t.tiers {
		out[i] = tr.maxPlayers
	}
	return out
}
