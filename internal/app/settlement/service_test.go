package settlement_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stakepool/internal/app/settlement"
	"stakepool/internal/engine"
	"stakepool/internal/escrow"
	"stakepool/internal/memstore"
	"stakepool/internal/payout"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*settlement.Service, *memstore.Store, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(epoch)
	st := memstore.New()
	return settlement.NewService(st, payout.Default(), clock), st, clock
}

func fund(t *testing.T, svc *settlement.Service, addr string, amount int64) {
	t.Helper()
	_, err := svc.TopUp(context.Background(), settlement.TopUpInput{Address: addr, Token: "chips", Amount: amount})
	require.NoError(t, err)
}

func balance(t *testing.T, svc *settlement.Service, addr string) int64 {
	t.Helper()
	b, err := svc.Balance(context.Background(), addr, "chips")
	require.NoError(t, err)
	return b.Balance
}

func TestCashGameLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, st, clock := newTestService(t)
	fund(t, svc, "alice", 1000)
	fund(t, svc, "bob", 1000)

	g, err := svc.CreateCashGame(ctx, "house", settlement.CreateCashGameInput{Token: "chips", MinDeposit: 100, MaxDeposit: 500, MaxPlayers: 6})
	require.NoError(t, err)
	require.Equal(t, "inactive", g.Status)
	require.Equal(t, epoch, g.CreatedAt)

	_, err = svc.Join(ctx, g.ID, "alice", settlement.AmountInput{Amount: 99})
	require.ErrorIs(t, err, engine.ErrDepositOutOfRange)
	_, err = svc.Join(ctx, g.ID, "alice", settlement.AmountInput{Amount: 500})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	g, err = svc.Join(ctx, g.ID, "bob", settlement.AmountInput{Amount: 400})
	require.NoError(t, err)
	require.Equal(t, int64(900), g.EscrowBalance)
	require.Equal(t, epoch.Add(time.Minute), g.UpdatedAt)

	// bob wins 150 off-engine; 20 goes to the house.
	_, err = svc.SettleHands(ctx, g.ID, "house", settlement.HandsInput{Adjustments: []settlement.AdjustmentInput{
		{Player: "alice", Delta: -170},
		{Player: "bob", Delta: 150},
	}})
	require.NoError(t, err)

	_, err = svc.EjectPlayers(ctx, g.ID, "house", settlement.EjectInput{Players: []string{"alice", "bob"}, Amounts: []int64{330, 550}})
	require.NoError(t, err)

	closed, err := svc.CloseCashGame(ctx, g.ID, "house", settlement.CloseInput{})
	require.NoError(t, err)
	require.Equal(t, int64(20), closed.Swept)
	require.Equal(t, "house", closed.Destination)

	require.Equal(t, int64(830), balance(t, svc, "alice"))
	require.Equal(t, int64(1150), balance(t, svc, "bob"))
	require.Equal(t, int64(20), balance(t, svc, "house"))

	_, err = svc.CashGame(ctx, g.ID)
	require.ErrorIs(t, err, settlement.ErrCashGameNotFound)
	require.Zero(t, st.Ledger().Balance("chips", escrow.Escrow("cash_game", g.ID)))
}

func TestRejectedOperationLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	fund(t, svc, "alice", 1000)
	g, err := svc.CreateCashGame(ctx, "house", settlement.CreateCashGameInput{Token: "chips", MinDeposit: 100, MaxDeposit: 500, MaxPlayers: 2})
	require.NoError(t, err)
	_, err = svc.Join(ctx, g.ID, "alice", settlement.AmountInput{Amount: 300})
	require.NoError(t, err)
	journal := len(st.Ledger().Journal())

	_, err = svc.EjectPlayers(ctx, g.ID, "house", settlement.EjectInput{Players: []string{"alice"}, Amounts: []int64{301}})
	require.ErrorIs(t, err, engine.ErrInsufficientEscrow)
	_, err = svc.RefundPlayer(ctx, g.ID, "alice", settlement.RefundInput{Player: "alice", Amount: 10})
	require.ErrorIs(t, err, engine.ErrUnauthorized)

	got, err := svc.CashGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Players, 1)
	require.Equal(t, int64(300), got.EscrowBalance)
	require.Len(t, st.Ledger().Journal(), journal)
}

func TestUnknownEntities(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.Join(ctx, "nope", "alice", settlement.AmountInput{Amount: 1})
	require.ErrorIs(t, err, settlement.ErrCashGameNotFound)
	_, err = svc.Register(ctx, "nope", "alice")
	require.ErrorIs(t, err, settlement.ErrTournamentNotFound)
	require.Equal(t, "tournament_not_found", settlement.Code(err))
}

func TestTournamentWithPayoutTable(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(t)
	fund(t, svc, "house", 2050)
	for i := 0; i < 6; i++ {
		fund(t, svc, fmt.Sprintf("p%d", i), 1000)
	}

	tr, err := svc.CreateTournament(ctx, "house", settlement.CreateTournamentInput{
		Name: "Friday Turbo", Token: "chips", EntryCost: 200, EntryFee: 5, MaxPlayers: 6,
		Guarantee: 2050, RegistrationOpen: true, ExpectedPlayers: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "friday-turbo", tr.Slug)
	require.Equal(t, []int{1000}, tr.Payouts)
	require.Zero(t, balance(t, svc, "house"))

	for i := 0; i < 6; i++ {
		_, err := svc.Register(ctx, "friday-turbo", fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}
	_, err = svc.StartTournament(ctx, tr.ID, "house")
	require.NoError(t, err)

	tr, err = svc.ApplyPayoutTable(ctx, tr.ID, "house", settlement.PayoutTableInput{})
	require.NoError(t, err)
	require.Equal(t, []int{700, 300}, tr.Payouts)

	res, err := svc.SettlePlayer(ctx, tr.ID, "house", settlement.PlayerInput{Player: "p0"})
	require.NoError(t, err)
	require.Equal(t, 6, res.Place)

	_, err = svc.Register(ctx, tr.ID, "p0")
	require.NoError(t, err)
	reg, err := svc.FlipRegistration(ctx, tr.ID, "house")
	require.NoError(t, err)
	require.False(t, reg.RegistrationOpen)

	clock.Advance(time.Hour)
	var last *settlement.ResultItem
	for i := 0; i < 6; i++ {
		last, err = svc.SettlePlayer(ctx, tr.ID, "house", settlement.PlayerInput{Player: fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
	}
	require.Equal(t, 1, last.Place)
	require.Equal(t, int64(1435), last.Amount)
	require.Equal(t, epoch.Add(time.Hour), last.SettledAt)

	closed, err := svc.CloseTournament(ctx, tr.ID, "house", settlement.CloseInput{})
	require.NoError(t, err)
	require.Equal(t, int64(1435), closed.Swept)
	require.Equal(t, int64(1435), balance(t, svc, "house"))
	require.Equal(t, int64(1410), balance(t, svc, "p4"))

	got, err := svc.Tournament(ctx, tr.ID)
	require.NoError(t, err)
	require.True(t, got.Closed)
	require.Len(t, got.Results, 7)
	require.Equal(t, int64(2050), got.PaidOut)
}

func TestPrizesThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	fund(t, svc, "a", 500)
	fund(t, svc, "b", 500)
	asset, err := svc.IssueAsset(ctx, settlement.IssueAssetInput{Owner: "house"})
	require.NoError(t, err)

	tr, err := svc.CreateTournament(ctx, "house", settlement.CreateTournamentInput{
		Token: "chips", EntryCost: 100, MaxPlayers: 2, RegistrationOpen: true, Payouts: []int{1000},
	})
	require.NoError(t, err)
	_, err = svc.AddPrize(ctx, tr.ID, "house", settlement.PrizeInput{Place: 1, Asset: asset.Asset})
	require.NoError(t, err)

	held, err := svc.Asset(ctx, asset.Asset)
	require.NoError(t, err)
	require.Equal(t, "escrow:tournament:"+tr.ID, held.Holder)

	_, err = svc.Register(ctx, tr.ID, "a")
	require.NoError(t, err)
	_, err = svc.Register(ctx, tr.ID, "b")
	require.NoError(t, err)
	_, err = svc.SettlePlayer(ctx, tr.ID, "house", settlement.PlayerInput{Player: "b"})
	require.NoError(t, err)
	res, err := svc.SettlePlayer(ctx, tr.ID, "house", settlement.PlayerInput{Player: "a"})
	require.NoError(t, err)
	require.Equal(t, []string{asset.Asset}, res.Prizes)

	held, err = svc.Asset(ctx, asset.Asset)
	require.NoError(t, err)
	require.Equal(t, "wallet:a", held.Holder)

	_, err = svc.Asset(ctx, "unknown")
	require.ErrorIs(t, err, settlement.ErrAssetNotFound)
}

func TestPayoutsPreview(t *testing.T) {
	svc, _, _ := newTestService(t)
	out, err := svc.Payouts(8, 2000)
	require.NoError(t, err)
	require.Equal(t, []int{700, 300}, out.Payouts)
	require.Equal(t, []int64{1400, 600}, out.Amounts)

	_, err = svc.Payouts(0, 0)
	require.ErrorIs(t, err, settlement.ErrInvalidRequest)
}

func TestLedgerListing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	fund(t, svc, "a", 500)
	g, err := svc.CreateCashGame(ctx, "house", settlement.CreateCashGameInput{Token: "chips", MinDeposit: 1, MaxDeposit: 500, MaxPlayers: 2})
	require.NoError(t, err)
	_, err = svc.Join(ctx, g.ID, "a", settlement.AmountInput{Amount: 120})
	require.NoError(t, err)

	out, err := svc.Ledger(ctx, escrow.EntryFilter{RefID: g.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.Equal(t, "cash_deposit", out.Items[0].Kind)
}
