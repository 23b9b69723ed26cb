package settlement

import (
	"time"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
)

type CreateCashGameInput struct {
	Token      string `json:"token"`
	MinDeposit int64  `json:"min_deposit"`
	MaxDeposit int64  `json:"max_deposit"`
	MaxPlayers int    `json:"max_players"`
}

type AmountInput struct {
	Amount int64 `json:"amount"`
}

type EjectInput struct {
	Players []string `json:"players"`
	Amounts []int64  `json:"amounts"`
}

type RefundInput struct {
	Player string `json:"player"`
	Amount int64  `json:"amount"`
}

type StatusInput struct {
	Status string `json:"status"`
}

type HandsInput struct {
	Adjustments []AdjustmentInput `json:"adjustments"`
}

type AdjustmentInput struct {
	Player string `json:"player"`
	Delta  int64  `json:"delta"`
}

type CloseInput struct {
	Destination string `json:"destination"`
}

type CreateTournamentInput struct {
	Name             string `json:"name"`
	Token            string `json:"token"`
	EntryCost        int64  `json:"entry_cost"`
	EntryFee         int64  `json:"entry_fee"`
	MaxPlayers       int    `json:"max_players"`
	Guarantee        int64  `json:"guarantee"`
	RegistrationOpen bool   `json:"registration_open"`
	Payouts          []int  `json:"payouts"`
	// ExpectedPlayers picks the payout table tier when Payouts is empty.
	ExpectedPlayers int `json:"expected_players"`
}

type PlayerInput struct {
	Player string `json:"player"`
}

type PayoutsInput struct {
	Payouts []int `json:"payouts"`
}

type PayoutTableInput struct {
	FieldSize int `json:"field_size"`
}

type PrizeInput struct {
	Place int    `json:"place"`
	Asset string `json:"asset"`
}

type TopUpInput struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Amount  int64  `json:"amount"`
}

type IssueAssetInput struct {
	Owner string `json:"owner"`
}

type SeatItem struct {
	Address string `json:"address"`
	Stack   int64  `json:"stack"`
	AddOn   int64  `json:"add_on"`
}

type CashGameResponse struct {
	ID            string     `json:"id"`
	Owner         string     `json:"owner"`
	Token         string     `json:"token"`
	Status        string     `json:"status"`
	EscrowBalance int64      `json:"escrow_balance"`
	MinDeposit    int64      `json:"min_deposit"`
	MaxDeposit    int64      `json:"max_deposit"`
	MaxPlayers    int        `json:"max_players"`
	Players       []SeatItem `json:"players"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type EntryItem struct {
	Address   string `json:"address"`
	Active    bool   `json:"active"`
	Entries   int    `json:"entries"`
	LastPlace int    `json:"last_place,omitempty"`
	Winnings  int64  `json:"winnings"`
}

type PrizeQueueItem struct {
	Place  int      `json:"place"`
	Assets []string `json:"assets"`
}

type ResultItem struct {
	Place     int       `json:"place"`
	Address   string    `json:"address"`
	Amount    int64     `json:"amount"`
	Prizes    []string  `json:"prizes"`
	SettledAt time.Time `json:"settled_at"`
}

type TournamentResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Owner            string           `json:"owner"`
	Token            string           `json:"token"`
	EscrowBalance    int64            `json:"escrow_balance"`
	EntryCost        int64            `json:"entry_cost"`
	EntryFee         int64            `json:"entry_fee"`
	MaxPlayers       int              `json:"max_players"`
	Guarantee        int64            `json:"guarantee"`
	RegistrationOpen bool             `json:"registration_open"`
	HasStarted       bool             `json:"has_started"`
	Closed           bool             `json:"closed"`
	ActivePlayers    int              `json:"active_players"`
	TotalEntries     int              `json:"total_entries"`
	PrizePool        int64            `json:"prize_pool"`
	FeesCollected    int64            `json:"fees_collected"`
	PaidOut          int64            `json:"paid_out"`
	Payouts          []int            `json:"payouts"`
	PrizeQueue       []PrizeQueueItem `json:"prize_queue"`
	Entries          []EntryItem      `json:"entries"`
	Results          []ResultItem     `json:"results"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type CloseResponse struct {
	ID          string   `json:"id"`
	Destination string   `json:"destination"`
	Swept       int64    `json:"swept"`
	Prizes      []string `json:"prizes,omitempty"`
}

type RegistrationResponse struct {
	ID               string `json:"id"`
	RegistrationOpen bool   `json:"registration_open"`
}

type PayoutSplitResponse struct {
	Players int     `json:"players"`
	Payouts []int   `json:"payouts"`
	Pool    int64   `json:"pool,omitempty"`
	Amounts []int64 `json:"amounts,omitempty"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Balance int64  `json:"balance"`
}

type AssetResponse struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
}

type LedgerEntryItem struct {
	Seq     int64  `json:"seq"`
	Token   string `json:"token"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
	Kind    string `json:"kind"`
	RefType string `json:"ref_type"`
	RefID   string `json:"ref_id"`
}

type LedgerResponse struct {
	Items  []LedgerEntryItem `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func cashGameResponse(g *engine.CashGame) *CashGameResponse {
	players := make([]SeatItem, 0, len(g.Players))
	for _, s := range g.Players {
		players = append(players, SeatItem{Address: string(s.Address), Stack: s.Stack, AddOn: s.AddOn})
	}
	return &CashGameResponse{
		ID:            g.ID,
		Owner:         string(g.Owner),
		Token:         string(g.Token),
		Status:        string(g.Status),
		EscrowBalance: g.EscrowBalance,
		MinDeposit:    g.MinDeposit,
		MaxDeposit:    g.MaxDeposit,
		MaxPlayers:    g.MaxPlayers,
		Players:       players,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func tournamentResponse(t *engine.Tournament) *TournamentResponse {
	queue := make([]PrizeQueueItem, 0, len(t.PrizeQueue))
	for _, q := range t.PrizeQueue {
		queue = append(queue, PrizeQueueItem{Place: q.Place, Assets: assetStrings(q.Assets)})
	}
	entries := make([]EntryItem, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, EntryItem{
			Address:   string(e.Address),
			Active:    e.Active,
			Entries:   e.Entries,
			LastPlace: e.LastPlace,
			Winnings:  e.Winnings,
		})
	}
	results := make([]ResultItem, 0, len(t.Results))
	for _, r := range t.Results {
		results = append(results, resultItem(r))
	}
	return &TournamentResponse{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		Owner:            string(t.Owner),
		Token:            string(t.Token),
		EscrowBalance:    t.EscrowBalance,
		EntryCost:        t.EntryCost,
		EntryFee:         t.EntryFee,
		MaxPlayers:       t.MaxPlayers,
		Guarantee:        t.Guarantee,
		RegistrationOpen: t.RegistrationOpen,
		HasStarted:       t.HasStarted,
		Closed:           t.Closed,
		ActivePlayers:    t.ActivePlayers,
		TotalEntries:     t.TotalEntries,
		PrizePool:        t.PrizePool(),
		FeesCollected:    t.FeesCollected,
		PaidOut:          t.PaidOut,
		Payouts:          append([]int{}, t.PayoutStructure...),
		PrizeQueue:       queue,
		Entries:          entries,
		Results:          results,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func resultItem(r engine.Result) ResultItem {
	return ResultItem{
		Place:     r.Place,
		Address:   string(r.Address),
		Amount:    r.Amount,
		Prizes:    assetStrings(r.Prizes),
		SettledAt: r.SettledAt,
	}
}

func assetStrings(in []escrow.AssetID) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, string(a))
	}
	return out
}
