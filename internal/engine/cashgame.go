package engine

import (
	"context"
	"time"

	"stakepool/internal/escrow"

	"github.com/thoas/go-funk"
)

type GameStatus string

const (
	GameInactive GameStatus = "inactive"
	GameActive   GameStatus = "active"
)

// Seat is one player at a cash table. AddOn holds chips bought while the game
// is active; they join the stack at the next hand settlement.
type Seat struct {
	Address escrow.Address
	Stack   int64
	AddOn   int64
}

// Chips is the seat's full claim on the escrow.
func (s Seat) Chips() int64 {
	return s.Stack + s.AddOn
}

type CashGame struct {
	ID            string
	Owner         escrow.Address
	Token         escrow.Token
	EscrowBalance int64
	MinDeposit    int64
	MaxDeposit    int64
	MaxPlayers    int
	Status        GameStatus
	Players       []Seat
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g *CashGame) Account() escrow.Account {
	return escrow.Escrow("cash_game", g.ID)
}

func (g *CashGame) seat(addr escrow.Address) int {
	for i, s := range g.Players {
		if s.Address == addr {
			return i
		}
	}
	return -1
}

// Adjustment is an off-engine hand result applied to one stack.
type Adjustment struct {
	Player escrow.Address
	Delta  int64
}

func NewCashGame(id string, owner escrow.Address, token escrow.Token, minDeposit, maxDeposit int64, maxPlayers int) (*CashGame, error) {
	const op = "create_cash_game"
	switch {
	case owner == "" || token == "":
		return nil, opErr(op, id, ErrInvalidConfig, "owner and token are required")
	case minDeposit < 0:
		return nil, opErr(op, id, ErrInvalidConfig, "min deposit %d is negative", minDeposit)
	case minDeposit > maxDeposit:
		return nil, opErr(op, id, ErrInvalidConfig, "min deposit %d exceeds max deposit %d", minDeposit, maxDeposit)
	case maxPlayers <= 0:
		return nil, opErr(op, id, ErrInvalidConfig, "max players must be positive")
	}
	return &CashGame{
		ID:         id,
		Owner:      owner,
		Token:      token,
		MinDeposit: minDeposit,
		MaxDeposit: maxDeposit,
		MaxPlayers: maxPlayers,
		Status:     GameInactive,
		Players:    []Seat{},
	}, nil
}

func (e *Engine) Join(ctx context.Context, g *CashGame, player escrow.Address, amount int64) error {
	const op = "join"
	if err := authorize(player, g.Owner, RoleParticipant); err != nil {
		return opErr(op, g.ID, err, "")
	}
	if len(g.Players) >= g.MaxPlayers {
		return opErr(op, g.ID, ErrTableFull, "%d of %d seats taken", len(g.Players), g.MaxPlayers)
	}
	if amount < g.MinDeposit || amount > g.MaxDeposit {
		return opErr(op, g.ID, ErrDepositOutOfRange, "deposit %d outside [%d, %d]", amount, g.MinDeposit, g.MaxDeposit)
	}
	if g.seat(player) >= 0 {
		return opErr(op, g.ID, ErrDuplicatePlayer, "%s is seated", player)
	}
	b := escrow.NewBatch("cash_game", g.ID).Move(g.Token, amount, escrow.Wallet(player), g.Account(), "cash_deposit")
	if err := e.apply(ctx, op, g.ID, b); err != nil {
		return err
	}
	g.Players = append(g.Players, Seat{Address: player, Stack: amount})
	g.EscrowBalance += amount
	return nil
}

func (e *Engine) AddChips(ctx context.Context, g *CashGame, player escrow.Address, amount int64) error {
	const op = "add_chips"
	if err := authorize(player, g.Owner, RoleParticipant); err != nil {
		return opErr(op, g.ID, err, "")
	}
	if amount <= 0 {
		return opErr(op, g.ID, ErrInvalidAmount, "amount %d", amount)
	}
	idx := g.seat(player)
	if idx < 0 {
		return opErr(op, g.ID, ErrPlayerNotFound, "%s is not seated", player)
	}
	b := escrow.NewBatch("cash_game", g.ID).Move(g.Token, amount, escrow.Wallet(player), g.Account(), "cash_add_chips")
	if err := e.apply(ctx, op, g.ID, b); err != nil {
		return err
	}
	if g.Status == GameActive {
		g.Players[idx].AddOn += amount
	} else {
		g.Players[idx].Stack += amount
	}
	g.EscrowBalance += amount
	return nil
}

// EjectPlayers pays each listed player and unseats them in one batch.
func (e *Engine) EjectPlayers(ctx context.Context, g *CashGame, caller escrow.Address, players []escrow.Address, amounts []int64) error {
	const op = "eject_players"
	if err := authorize(caller, g.Owner, RoleOwner); err != nil {
		return opErr(op, g.ID, err, "")
	}
	if len(players) != len(amounts) {
		return opErr(op, g.ID, ErrLengthMismatch, "%d players, %d amounts", len(players), len(amounts))
	}
	seen := make(map[escrow.Address]bool, len(players))
	var total int64
	b := escrow.NewBatch("cash_game", g.ID)
	for i, p := range players {
		if amounts[i] < 0 {
			return opErr(op, g.ID, ErrInvalidAmount, "amount %d for %s", amounts[i], p)
		}
		if seen[p] {
			return opErr(op, g.ID, ErrDuplicatePlayer, "%s listed twice", p)
		}
		seen[p] = true
		if g.seat(p) < 0 {
			return opErr(op, g.ID, ErrPlayerNotFound, "%s is not seated", p)
		}
		if amounts[i] > g.EscrowBalance-total {
			return opErr(op, g.ID, ErrInsufficientEscrow, "escrow holds %d", g.EscrowBalance)
		}
		total += amounts[i]
		b.Move(g.Token, amounts[i], g.Account(), escrow.Wallet(p), "cash_eject")
	}
	if err := e.apply(ctx, op, g.ID, b); err != nil {
		return err
	}
	g.Players = funk.Filter(g.Players, func(s Seat) bool {
		return !funk.Contains(players, s.Address)
	}).([]Seat)
	g.EscrowBalance -= total
	return nil
}

// RefundPlayer pays out part of a seated player's chips without unseating them.
func (e *Engine) RefundPlayer(ctx context.Context, g *CashGame, caller, player escrow.Address, amount int64) error {
	const op = "refund_player"
	if err := authorize(caller, g.Owner, RoleOwner); err != nil {
		return opErr(op, g.ID, err, "")
	}
	if amount <= 0 {
		return opErr(op, g.ID, ErrInvalidAmount, "amount %d", amount)
	}
	idx := g.seat(player)
	if idx < 0 {
		return opErr(op, g.ID, ErrPlayerNotFound, "%s is not seated", player)
	}
	if amount > g.EscrowBalance {
		return opErr(op, g.ID, ErrInsufficientEscrow, "escrow holds %d, refund %d", g.EscrowBalance, amount)
	}
	b := escrow.NewBatch("cash_game", g.ID).Move(g.Token, amount, g.Account(), escrow.Wallet(player), "cash_refund")
	if err := e.apply(ctx, op, g.ID, b); err != nil {
		return err
	}
	s := &g.Players[idx]
	take := min(amount, s.Stack)
	s.Stack -= take
	s.AddOn = max(s.AddOn-(amount-take), 0)
	g.EscrowBalance -= amount
	return nil
}

func (e *Engine) SetStatus(g *CashGame, caller escrow.Address, status GameStatus) error {
	const op = "set_status"
	if err := authorize(caller, g.Owner, RoleOwner); err != nil {
		return opErr(op, g.ID, err, "")
	}
	if status != GameActive && status != GameInactive {
		return opErr(op, g.ID, ErrInvalidConfig, "unknown status %q", status)
	}
	g.Status = status
	return nil
}

// SettleHands records off-engine hand results. No funds move: the deltas only
// redistribute chips between seats, then pending add-ons join the stacks up to
// the max deposit.
func (e *Engine) SettleHands(g *CashGame, caller escrow.Address, adjustments []Adjustment) error {
	const op = "settle_hands"
	if err := authorize(caller, g.Owner, RoleOwner); err != nil {
		return opErr(op, g.ID, err, "")
	}
	// Net each player's deltas first so the order inside one settlement
	// does not matter.
	net := make([]int64, len(g.Players))
	for _, adj := range adjustments {
		idx := g.seat(adj.Player)
		if idx < 0 {
			return opErr(op, g.ID, ErrPlayerNotFound, "%s is not seated", adj.Player)
		}
		sum, ok := addInt64(net[idx], adj.Delta)
		if !ok {
			return opErr(op, g.ID, ErrInvalidAmount, "net delta for %s overflows", adj.Player)
		}
		net[idx] = sum
	}
	seats := make([]Seat, len(g.Players))
	copy(seats, g.Players)
	var chips int64
	for i := range seats {
		s := &seats[i]
		stack, ok := addInt64(s.Stack, net[i])
		if !ok || stack > g.EscrowBalance {
			return opErr(op, g.ID, ErrInsufficientEscrow, "%s stack exceeds escrow %d", s.Address, g.EscrowBalance)
		}
		if stack < 0 {
			return opErr(op, g.ID, ErrInvalidAmount, "%s stack would be %d", s.Address, stack)
		}
		s.Stack = stack
		if s.AddOn > 0 && s.Stack < g.MaxDeposit {
			fold := min(s.AddOn, g.MaxDeposit-s.Stack)
			s.Stack += fold
			s.AddOn -= fold
		}
		// Compare against what is left so the running total cannot overflow.
		left := g.EscrowBalance - chips
		if s.Stack > left || s.AddOn > left-s.Stack {
			return opErr(op, g.ID, ErrInsufficientEscrow, "stacks exceed escrow %d", g.EscrowBalance)
		}
		chips += s.Chips()
	}
	g.Players = seats
	return nil
}

// CloseCashGame sweeps the remaining escrow, the rake, to destination and
// returns the swept amount. The caller drops the record afterwards.
func (e *Engine) CloseCashGame(ctx context.Context, g *CashGame, caller, destination escrow.Address) (int64, error) {
	const op = "close_cash_game"
	if err := authorize(caller, g.Owner, RoleOwner); err != nil {
		return 0, opErr(op, g.ID, err, "")
	}
	if len(g.Players) > 0 {
		return 0, opErr(op, g.ID, ErrGameNotEmpty, "%d players seated", len(g.Players))
	}
	if destination == "" {
		destination = g.Owner
	}
	swept := g.EscrowBalance
	b := escrow.NewBatch("cash_game", g.ID).Move(g.Token, swept, g.Account(), escrow.Wallet(destination), "cash_rake")
	if err := e.apply(ctx, op, g.ID, b); err != nil {
		return 0, err
	}
	g.EscrowBalance = 0
	return swept, nil
}

// addInt64 reports false when a+b does not fit in an int64.
func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
