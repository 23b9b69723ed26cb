package engine

import "stakepool/internal/escrow"

func (g *CashGame) Clone() *CashGame {
	out := *g
	out.Players = append([]Seat{}, g.Players...)
	return &out
}

func (t *Tournament) Clone() *Tournament {
	out := *t
	out.PayoutStructure = append([]int{}, t.PayoutStructure...)
	out.Entries = append([]Entry{}, t.Entries...)
	out.PrizeQueue = make([]PrizeQueue, len(t.PrizeQueue))
	for i, q := range t.PrizeQueue {
		out.PrizeQueue[i] = PrizeQueue{Place: q.Place, Assets: append([]escrow.AssetID{}, q.Assets...)}
	}
	out.Results = make([]Result, len(t.Results))
	for i, r := range t.Results {
		r.Prizes = append([]escrow.AssetID(nil), r.Prizes...)
		out.Results[i] = r
	}
	return &out
}
