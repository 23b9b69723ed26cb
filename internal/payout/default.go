package payout

// DefaultTiers is the stepped table used when no table file is configured.
// The 125-player tier carries half per-mille entries; they floor on normalization.
var DefaultTiers = []Tier{
	{MaxPlayers: 2, Payouts: []float64{1000}},
	{MaxPlayers: 10, Payouts: []float64{700, 300}},
	{MaxPlayers: 20, Payouts: []float64{400, 250, 200, 150}},
	{MaxPlayers: 30, Payouts: []float64{350, 220, 150, 110, 90, 80}},
	{MaxPlayers: 40, Payouts: []float64{330, 200, 120, 90, 80, 70, 60, 50}},
	{MaxPlayers: 50, Payouts: []float64{310, 190, 98, 88, 78, 68, 55, 44, 37, 32}},
	{MaxPlayers: 75, Payouts: []float64{290, 175, 89, 79, 69, 59, 47, 35, 29, 23, 21, 21, 21, 21, 21}},
	{MaxPlayers: 100, Payouts: []float64{
		280, 170, 84, 75, 65, 55, 43, 29, 26, 18, 18, 18, 18, 18, 18, 13, 13, 13, 13, 13,
	}},
	{MaxPlayers: 125, Payouts: []float64{
		270, 165, 82, 72, 62, 52, 40, 27, 24, 16, 16, 16, 16, 16, 16,
		11.5, 11.5, 11.5, 11.5, 11.5, 10.5, 10.5, 10.5, 10.5, 10.5,
	}},
}

func Default() *Table {
	t, err := New(UnitPerMille, DefaultTiers)
	if err != nil {
		panic(err)
	}
	return t
}
