package engine

import (
	"context"
	"math"
	"time"

	"stakepool/internal/escrow"

	"github.com/gosimple/slug"
)

// Entry is one address's registration record. A rebuy reactivates it.
type Entry struct {
	Address   escrow.Address
	Active    bool
	Entries   int
	LastPlace int
	Winnings  int64
}

// PrizeQueue holds the non-fungible prizes waiting for one finishing place.
type PrizeQueue struct {
	Place  int
	Assets []escrow.AssetID
}

// Result is one settled finish.
type Result struct {
	Place     int
	Address   escrow.Address
	Amount    int64
	Prizes    []escrow.AssetID
	SettledAt time.Time
}

type Tournament struct {
	ID               string
	Name             string
	Slug             string
	Owner            escrow.Address
	Token            escrow.Token
	EscrowBalance    int64
	EntryCost        int64
	EntryFee         int64
	MaxPlayers       int
	Guarantee        int64
	RegistrationOpen bool
	HasStarted       bool
	Closed           bool
	ActivePlayers    int
	TotalEntries     int
	PayoutStructure  []int
	PrizeQueue       []PrizeQueue
	Entries          []Entry
	FeesCollected    int64
	PaidOut          int64
	Results          []Result
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *Tournament) Account() escrow.Account {
	return escrow.Escrow("tournament", t.ID)
}

func (t *Tournament) entry(addr escrow.Address) int {
	for i, e := range t.Entries {
		if e.Address == addr {
			return i
		}
	}
	return -1
}

func (t *Tournament) activeEntry(addr escrow.Address) int {
	idx := t.entry(addr)
	if idx < 0 || !t.Entries[idx].Active {
		return -1
	}
	return idx
}

func (t *Tournament) queued(asset escrow.AssetID) bool {
	for _, q := range t.PrizeQueue {
		for _, a := range q.Assets {
			if a == asset {
				return true
			}
		}
	}
	return false
}

// Spendable is escrow available to prizes and refunds: everything but the rake.
func (t *Tournament) Spendable() int64 {
	return t.EscrowBalance - t.FeesCollected
}

type TournamentConfig struct {
	ID               string
	Name             string
	Owner            escrow.Address
	Token            escrow.Token
	EntryCost        int64
	EntryFee         int64
	MaxPlayers       int
	Guarantee        int64
	RegistrationOpen bool
	PayoutStructure  []int
}

func (c TournamentConfig) problem() string {
	switch {
	case c.Owner == "" || c.Token == "":
		return "owner and token are required"
	case c.MaxPlayers <= 0:
		return "max players must be positive"
	case c.EntryCost < 0 || c.EntryFee < 0 || c.Guarantee < 0:
		return "entry cost, entry fee and guarantee must not be negative"
	case c.EntryCost > math.MaxInt64-c.EntryFee:
		return "entry cost plus fee overflows"
	}
	return structureProblem(c.PayoutStructure)
}

// CreateTournament funds the guarantee from the owner's wallet and returns the new record.
func (e *Engine) CreateTournament(ctx context.Context, cfg TournamentConfig) (*Tournament, error) {
	const op = "create_tournament"
	if p := cfg.problem(); p != "" {
		return nil, opErr(op, cfg.ID, ErrInvalidConfig, "%s", p)
	}
	name := cfg.Name
	if name == "" {
		name = "tournament " + cfg.ID
	}
	t := &Tournament{
		ID:               cfg.ID,
		Name:             name,
		Slug:             slug.Make(name),
		Owner:            cfg.Owner,
		Token:            cfg.Token,
		EntryCost:        cfg.EntryCost,
		EntryFee:         cfg.EntryFee,
		MaxPlayers:       cfg.MaxPlayers,
		Guarantee:        cfg.Guarantee,
		RegistrationOpen: cfg.RegistrationOpen,
		PayoutStructure:  append([]int{}, cfg.PayoutStructure...),
		PrizeQueue:       []PrizeQueue{},
		Entries:          []Entry{},
		Results:          []Result{},
	}
	b := escrow.NewBatch("tournament", t.ID).Move(t.Token, t.Guarantee, escrow.Wallet(t.Owner), t.Account(), "guarantee")
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return nil, err
	}
	t.EscrowBalance = t.Guarantee
	return t, nil
}

// Register pays entry cost plus fee and (re)activates the player's entry.
// An eliminated player registering again is a rebuy.
func (e *Engine) Register(ctx context.Context, t *Tournament, player escrow.Address) error {
	const op = "register"
	if err := authorize(player, t.Owner, RoleParticipant); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if !t.RegistrationOpen {
		return opErr(op, t.ID, ErrRegistrationClosed, "")
	}
	if t.ActivePlayers >= t.MaxPlayers {
		return opErr(op, t.ID, ErrTableFull, "%d of %d entries active", t.ActivePlayers, t.MaxPlayers)
	}
	if t.activeEntry(player) >= 0 {
		return opErr(op, t.ID, ErrAlreadyRegistered, "%s", player)
	}
	b := escrow.NewBatch("tournament", t.ID).
		Move(t.Token, t.EntryCost, escrow.Wallet(player), t.Account(), "entry_cost").
		Move(t.Token, t.EntryFee, escrow.Wallet(player), t.Account(), "entry_fee")
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return err
	}
	idx := t.entry(player)
	if idx < 0 {
		t.Entries = append(t.Entries, Entry{Address: player})
		idx = len(t.Entries) - 1
	}
	t.Entries[idx].Active = true
	t.Entries[idx].Entries++
	t.ActivePlayers++
	t.TotalEntries++
	t.EscrowBalance += t.EntryCost + t.EntryFee
	t.FeesCollected += t.EntryFee
	return nil
}

// Unregister withdraws the caller's own entry before the start. The fee is kept.
func (e *Engine) Unregister(ctx context.Context, t *Tournament, player escrow.Address) error {
	const op = "unregister"
	if err := authorize(player, t.Owner, RoleParticipant); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if !t.RegistrationOpen || t.HasStarted {
		return opErr(op, t.ID, ErrRegistrationClosed, "open=%t started=%t", t.RegistrationOpen, t.HasStarted)
	}
	return e.withdraw(ctx, op, t, player)
}

// Refund is the owner's unregister, allowed for as long as registration is open.
func (e *Engine) Refund(ctx context.Context, t *Tournament, caller, player escrow.Address) error {
	const op = "refund"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if !t.RegistrationOpen {
		return opErr(op, t.ID, ErrRegistrationClosed, "")
	}
	return e.withdraw(ctx, op, t, player)
}

func (e *Engine) withdraw(ctx context.Context, op string, t *Tournament, player escrow.Address) error {
	idx := t.activeEntry(player)
	if idx < 0 {
		return opErr(op, t.ID, ErrNotRegistered, "%s", player)
	}
	if t.EntryCost > t.Spendable() {
		return opErr(op, t.ID, ErrInsufficientEscrow, "spendable escrow %d, refund %d", t.Spendable(), t.EntryCost)
	}
	b := escrow.NewBatch("tournament", t.ID).Move(t.Token, t.EntryCost, t.Account(), escrow.Wallet(player), "entry_refund")
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return err
	}
	t.Entries[idx].Active = false
	t.Entries[idx].Entries--
	t.ActivePlayers--
	t.TotalEntries--
	t.EscrowBalance -= t.EntryCost
	return nil
}

func (e *Engine) StartTournament(t *Tournament, caller escrow.Address) error {
	const op = "start_tournament"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if t.HasStarted {
		return opErr(op, t.ID, ErrAlreadyStarted, "")
	}
	t.HasStarted = true
	return nil
}

// FlipRegistration toggles registration and reports the new state.
func (e *Engine) FlipRegistration(t *Tournament, caller escrow.Address) (bool, error) {
	const op = "flip_registration"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return false, opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return false, opErr(op, t.ID, ErrTournamentClosed, "")
	}
	t.RegistrationOpen = !t.RegistrationOpen
	return t.RegistrationOpen, nil
}

func (e *Engine) UpdatePayouts(t *Tournament, caller escrow.Address, structure []int) error {
	const op = "update_payouts"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if p := structureProblem(structure); p != "" {
		return opErr(op, t.ID, ErrInvalidConfig, "%s", p)
	}
	t.PayoutStructure = append([]int{}, structure...)
	return nil
}

// SettlePlayer eliminates an active player. Their place is the number of
// players still active, so eliminations must arrive in bust order.
func (e *Engine) SettlePlayer(ctx context.Context, t *Tournament, caller, player escrow.Address) (Result, error) {
	const op = "settle_player"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return Result{}, opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return Result{}, opErr(op, t.ID, ErrTournamentClosed, "")
	}
	idx := t.activeEntry(player)
	if idx < 0 {
		return Result{}, opErr(op, t.ID, ErrPlayerNotActive, "%s", player)
	}
	place := t.ActivePlayers
	amount := t.PrizeFor(place)
	if amount > t.Spendable() {
		return Result{}, opErr(op, t.ID, ErrInsufficientEscrow, "place %d pays %d, spendable escrow %d", place, amount, t.Spendable())
	}
	qi := -1
	for i, q := range t.PrizeQueue {
		if q.Place == place {
			qi = i
			break
		}
	}
	var prizes []escrow.AssetID
	if qi >= 0 {
		prizes = append(prizes, t.PrizeQueue[qi].Assets...)
	}

	b := escrow.NewBatch("tournament", t.ID).Move(t.Token, amount, t.Account(), escrow.Wallet(player), "prize")
	for _, a := range prizes {
		b.Transfer(a, t.Account(), escrow.Wallet(player))
	}
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return Result{}, err
	}

	if qi >= 0 {
		t.PrizeQueue = append(t.PrizeQueue[:qi], t.PrizeQueue[qi+1:]...)
	}
	en := &t.Entries[idx]
	en.Active = false
	en.LastPlace = place
	en.Winnings += amount
	t.ActivePlayers--
	t.EscrowBalance -= amount
	t.PaidOut += amount
	res := Result{Place: place, Address: player, Amount: amount, Prizes: prizes}
	t.Results = append(t.Results, res)
	return res, nil
}

// AddPrize takes custody of asset from the owner and queues it for place.
// Prizes for a place that already paid out wait for its next finisher.
func (e *Engine) AddPrize(ctx context.Context, t *Tournament, caller escrow.Address, place int, asset escrow.AssetID) error {
	const op = "add_prize"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if place < 1 {
		return opErr(op, t.ID, ErrInvalidPlace, "place %d", place)
	}
	if asset == "" {
		return opErr(op, t.ID, ErrInvalidConfig, "asset is required")
	}
	if t.queued(asset) {
		return opErr(op, t.ID, ErrDuplicatePrize, "%s", asset)
	}
	b := escrow.NewBatch("tournament", t.ID).Transfer(asset, escrow.Wallet(t.Owner), t.Account())
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return err
	}
	for i := range t.PrizeQueue {
		if t.PrizeQueue[i].Place == place {
			t.PrizeQueue[i].Assets = append(t.PrizeQueue[i].Assets, asset)
			return nil
		}
	}
	t.PrizeQueue = append(t.PrizeQueue, PrizeQueue{Place: place, Assets: []escrow.AssetID{asset}})
	return nil
}

// Closeout is what closing a tournament returned to its destination.
type Closeout struct {
	Destination escrow.Address
	Swept       int64
	Prizes      []escrow.AssetID
}

// CloseTournament requires every entrant to be settled, then sweeps the fees,
// unused guarantee, rounding dust and banked prizes to destination.
func (e *Engine) CloseTournament(ctx context.Context, t *Tournament, caller, destination escrow.Address) (Closeout, error) {
	const op = "close_tournament"
	if err := authorize(caller, t.Owner, RoleOwner); err != nil {
		return Closeout{}, opErr(op, t.ID, err, "")
	}
	if t.Closed {
		return Closeout{}, opErr(op, t.ID, ErrTournamentClosed, "")
	}
	if t.ActivePlayers > 0 {
		return Closeout{}, opErr(op, t.ID, ErrTournamentNotEmpty, "%d players active", t.ActivePlayers)
	}
	if destination == "" {
		destination = t.Owner
	}
	out := Closeout{Destination: destination, Swept: t.EscrowBalance}
	b := escrow.NewBatch("tournament", t.ID).Move(t.Token, out.Swept, t.Account(), escrow.Wallet(destination), "sweep")
	for _, q := range t.PrizeQueue {
		for _, a := range q.Assets {
			b.Transfer(a, t.Account(), escrow.Wallet(destination))
			out.Prizes = append(out.Prizes, a)
		}
	}
	if err := e.apply(ctx, op, t.ID, b); err != nil {
		return Closeout{}, err
	}
	t.EscrowBalance = 0
	t.PrizeQueue = []PrizeQueue{}
	t.RegistrationOpen = false
	t.Closed = true
	return out, nil
}
