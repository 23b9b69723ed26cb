package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"stakepool/internal/escrow"

	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) *CashGame {
	t.Helper()
	g, err := NewCashGame("g1", "owner", chips, 100, 1000, 3)
	require.NoError(t, err)
	return g
}

func TestNewCashGameValidation(t *testing.T) {
	cases := map[string]struct {
		min, max int64
		seats    int
	}{
		"min above max": {min: 200, max: 100, seats: 2},
		"no seats":      {min: 1, max: 10, seats: 0},
		"negative min":  {min: -1, max: 10, seats: 2},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCashGame("g", "owner", chips, tc.min, tc.max, tc.seats)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	g, err := NewCashGame("g", "owner", chips, 50, 50, 1)
	require.NoError(t, err)
	require.Equal(t, GameInactive, g.Status)
	require.Zero(t, g.EscrowBalance)
}

func TestJoinDepositBoundsAreInclusive(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000, "c": 5000, "d": 5000})
	g, err := NewCashGame("g1", "owner", chips, 100, 1000, 4)
	require.NoError(t, err)

	require.ErrorIs(t, e.Join(ctx, g, "a", 99), ErrDepositOutOfRange)
	require.ErrorIs(t, e.Join(ctx, g, "a", 1001), ErrDepositOutOfRange)
	require.NoError(t, e.Join(ctx, g, "a", 100))
	require.NoError(t, e.Join(ctx, g, "b", 1000))
	require.NoError(t, e.Join(ctx, g, "c", 101))
	require.NoError(t, e.Join(ctx, g, "d", 999))

	require.Equal(t, int64(2200), g.EscrowBalance)
	require.Equal(t, g.EscrowBalance, mem.Balance(chips, g.Account()))
	require.Equal(t, int64(4900), walletOf(mem, "a"))
	require.Equal(t, []escrow.Address{"a", "b", "c", "d"}, seatAddresses(g))
}

func TestJoinRejections(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 500, "b": 500, "c": 500, "d": 500, "poor": 50})
	g := newTestGame(t)

	require.NoError(t, e.Join(ctx, g, "a", 100))
	require.ErrorIs(t, e.Join(ctx, g, "a", 100), ErrDuplicatePlayer)
	require.ErrorIs(t, e.Join(ctx, g, "poor", 100), ErrInsufficientFunds)
	require.ErrorIs(t, e.Join(ctx, g, "", 100), ErrUnauthorized)
	require.NoError(t, e.Join(ctx, g, "b", 100))
	require.NoError(t, e.Join(ctx, g, "c", 100))
	require.ErrorIs(t, e.Join(ctx, g, "d", 100), ErrTableFull)

	require.Len(t, g.Players, 3)
	require.Equal(t, int64(300), g.EscrowBalance)
	require.Equal(t, int64(50), walletOf(mem, "poor"))
}

func TestAddChipsIsUncapped(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 1000))

	require.NoError(t, e.AddChips(ctx, g, "a", 2500))
	require.Equal(t, int64(3500), g.Players[0].Stack)
	require.Equal(t, int64(3500), mem.Balance(chips, g.Account()))

	require.ErrorIs(t, e.AddChips(ctx, g, "b", 100), ErrPlayerNotFound)
	require.ErrorIs(t, e.AddChips(ctx, g, "a", 0), ErrInvalidAmount)
}

func TestAddChipsWhileActiveIsHeldUntilSettlement(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 600))
	require.NoError(t, e.Join(ctx, g, "b", 600))
	require.NoError(t, e.SetStatus(g, "owner", GameActive))

	require.NoError(t, e.AddChips(ctx, g, "a", 700))
	require.Equal(t, int64(600), g.Players[0].Stack)
	require.Equal(t, int64(700), g.Players[0].AddOn)

	// a loses 200 to b, then the add-on folds in up to the max deposit.
	require.NoError(t, e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: -200}, {Player: "b", Delta: 200}}))
	require.Equal(t, int64(1000), g.Players[0].Stack)
	require.Equal(t, int64(100), g.Players[0].AddOn)
	require.Equal(t, int64(800), g.Players[1].Stack)
	require.Equal(t, g.EscrowBalance, g.Players[0].Chips()+g.Players[1].Chips())
}

func TestSettleHandsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 500))
	require.NoError(t, e.Join(ctx, g, "b", 500))

	err := e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: 100}, {Player: "ghost", Delta: -100}})
	require.ErrorIs(t, err, ErrPlayerNotFound)
	require.ErrorIs(t, e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: -501}}), ErrInvalidAmount)
	require.ErrorIs(t, e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: 1}}), ErrInsufficientEscrow)
	require.ErrorIs(t, e.SettleHands(g, "a", nil), ErrUnauthorized)
	require.Equal(t, int64(500), g.Players[0].Stack)
	require.Equal(t, int64(500), g.Players[1].Stack)
}

func TestSettleHandsRejectsOverflowingDeltas(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 100))
	require.NoError(t, e.Join(ctx, g, "b", 100))

	huge := int64(math.MaxInt64 - 100)
	err := e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: huge}, {Player: "b", Delta: huge}})
	require.ErrorIs(t, err, ErrInsufficientEscrow)
	err = e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: math.MaxInt64}, {Player: "a", Delta: 1}})
	require.ErrorIs(t, err, ErrInvalidAmount)
	err = e.SettleHands(g, "owner", []Adjustment{{Player: "a", Delta: math.MinInt64}})
	require.ErrorIs(t, err, ErrInvalidAmount)

	require.Equal(t, int64(100), g.Players[0].Stack)
	require.Equal(t, int64(100), g.Players[1].Stack)
	require.Equal(t, int64(200), g.EscrowBalance)
}

func TestSettleHandsNetsDeltasPerPlayer(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, map[escrow.Address]int64{"a": 5000, "b": 5000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 500))
	require.NoError(t, e.Join(ctx, g, "b", 500))

	// a dips below zero mid-list but nets to +100.
	adjustments := []Adjustment{{Player: "a", Delta: -600}, {Player: "a", Delta: 700}, {Player: "b", Delta: -100}}
	require.NoError(t, e.SettleHands(g, "owner", adjustments))
	require.Equal(t, int64(600), g.Players[0].Stack)
	require.Equal(t, int64(400), g.Players[1].Stack)
}

func TestEjectPlayers(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 1000, "b": 1000, "c": 1000})
	g := newTestGame(t)
	for _, p := range []escrow.Address{"a", "b", "c"} {
		require.NoError(t, e.Join(ctx, g, p, 500))
	}

	require.ErrorIs(t, e.EjectPlayers(ctx, g, "a", []escrow.Address{"a"}, []int64{500}), ErrUnauthorized)
	require.ErrorIs(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"a", "b"}, []int64{500}), ErrLengthMismatch)
	require.ErrorIs(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"a", "a"}, []int64{1, 1}), ErrDuplicatePlayer)
	require.ErrorIs(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"a", "x"}, []int64{1, 1}), ErrPlayerNotFound)
	require.ErrorIs(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"a", "b"}, []int64{1000, 501}), ErrInsufficientEscrow)
	require.Len(t, g.Players, 3)
	require.Equal(t, int64(500), walletOf(mem, "a"))

	require.NoError(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"c", "a"}, []int64{700, 400}))
	require.Equal(t, []escrow.Address{"b"}, seatAddresses(g))
	require.Equal(t, int64(400), g.EscrowBalance)
	require.Equal(t, int64(900), walletOf(mem, "a"))
	require.Equal(t, int64(1200), walletOf(mem, "c"))
}

func TestRefundPlayerKeepsSeat(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 1000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 800))

	require.NoError(t, e.RefundPlayer(ctx, g, "owner", "a", 300))
	require.Len(t, g.Players, 1)
	require.Equal(t, int64(500), g.Players[0].Stack)
	require.Equal(t, int64(500), walletOf(mem, "a"))

	require.ErrorIs(t, e.RefundPlayer(ctx, g, "owner", "a", 501), ErrInsufficientEscrow)
	require.ErrorIs(t, e.RefundPlayer(ctx, g, "owner", "b", 1), ErrPlayerNotFound)
	require.ErrorIs(t, e.RefundPlayer(ctx, g, "a", "a", 1), ErrUnauthorized)
	require.Equal(t, int64(500), mem.Balance(chips, g.Account()))
}

func TestCloseCashGame(t *testing.T) {
	ctx := context.Background()
	e, mem := newTestEngine(t, map[escrow.Address]int64{"a": 1000})
	g := newTestGame(t)
	require.NoError(t, e.Join(ctx, g, "a", 1000))

	_, err := e.CloseCashGame(ctx, g, "owner", "")
	require.ErrorIs(t, err, ErrGameNotEmpty)

	// a cashes out 950; the other 50 is rake.
	require.NoError(t, e.EjectPlayers(ctx, g, "owner", []escrow.Address{"a"}, []int64{950}))
	_, err = e.CloseCashGame(ctx, g, "a", "")
	require.ErrorIs(t, err, ErrUnauthorized)

	swept, err := e.CloseCashGame(ctx, g, "owner", "house")
	require.NoError(t, err)
	require.Equal(t, int64(50), swept)
	require.Equal(t, int64(50), walletOf(mem, "house"))
	require.Zero(t, mem.Balance(chips, g.Account()))
}

func TestSetStatusValidation(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	g := newTestGame(t)
	require.ErrorIs(t, e.SetStatus(g, "owner", GameStatus("paused")), ErrInvalidConfig)
	require.ErrorIs(t, e.SetStatus(g, "x", GameActive), ErrUnauthorized)
	require.NoError(t, e.SetStatus(g, "owner", GameActive))
	require.Equal(t, GameActive, g.Status)
}

func TestOpErrorCarriesContext(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	g := newTestGame(t)
	err := e.Join(context.Background(), g, "a", 5)

	var oe *OpError
	require.True(t, errors.As(err, &oe))
	require.Equal(t, "join", oe.Op)
	require.Equal(t, "g1", oe.EntityID)
	require.Equal(t, ErrDepositOutOfRange, Kind(err))
	require.Contains(t, err.Error(), "deposit 5 outside [100, 1000]")
}

func seatAddresses(g *CashGame) []escrow.Address {
	out := make([]escrow.Address, 0, len(g.Players))
	for _, s := range g.Players {
		out = append(out, s.Address)
	}
	return out
}
