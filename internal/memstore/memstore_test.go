package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"stakepool/internal/app/settlement"
	"stakepool/internal/engine"
	"stakepool/internal/escrow"

	"github.com/stretchr/testify/require"
)

func TestInTxCommitsRecordsAndLedger(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Mint(ctx, "chips", escrow.Wallet("a"), 500))
	g, err := engine.NewCashGame("g1", "owner", "chips", 100, 500, 2)
	require.NoError(t, err)

	err = st.InTx(ctx, func(repo settlement.Repository) error {
		if err := engine.New(repo).Join(ctx, g, "a", 200); err != nil {
			return err
		}
		return repo.SaveCashGame(ctx, g)
	})
	require.NoError(t, err)

	got, err := st.GetCashGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, int64(200), got.EscrowBalance)
	bal, err := st.Balance(ctx, "chips", escrow.Wallet("a"))
	require.NoError(t, err)
	require.Equal(t, int64(300), bal)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Mint(ctx, "chips", escrow.Wallet("a"), 500))
	g, err := engine.NewCashGame("g1", "owner", "chips", 100, 500, 2)
	require.NoError(t, err)
	require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.SaveCashGame(ctx, g) }))

	boom := errors.New("boom")
	err = st.InTx(ctx, func(repo settlement.Repository) error {
		locked, err := repo.LockCashGame(ctx, "g1")
		if err != nil {
			return err
		}
		if err := engine.New(repo).Join(ctx, locked, "a", 200); err != nil {
			return err
		}
		if err := repo.SaveCashGame(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.GetCashGame(ctx, "g1")
	require.NoError(t, err)
	require.Empty(t, got.Players)
	bal, _ := st.Balance(ctx, "chips", escrow.Wallet("a"))
	require.Equal(t, int64(500), bal)
	require.Len(t, st.Ledger().Journal(), 1)
}

func TestDeleteCashGame(t *testing.T) {
	ctx := context.Background()
	st := New()
	g, err := engine.NewCashGame("g1", "owner", "chips", 1, 5, 2)
	require.NoError(t, err)
	require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.SaveCashGame(ctx, g) }))
	require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.DeleteCashGame(ctx, "g1") }))

	_, err = st.GetCashGame(ctx, "g1")
	require.ErrorIs(t, err, settlement.ErrNotFound)
	err = st.InTx(ctx, func(repo settlement.Repository) error { return repo.DeleteCashGame(ctx, "g1") })
	require.ErrorIs(t, err, settlement.ErrNotFound)
}

func TestTournamentLookupBySlug(t *testing.T) {
	ctx := context.Background()
	st := New()
	tr := &engine.Tournament{ID: "t1", Slug: "friday-turbo", Owner: "owner", Token: "chips", MaxPlayers: 2}
	require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.SaveTournament(ctx, tr) }))

	got, err := st.GetTournament(ctx, "friday-turbo")
	require.NoError(t, err)
	require.Equal(t, "t1", got.ID)

	err = st.InTx(ctx, func(repo settlement.Repository) error {
		locked, err := repo.LockTournament(ctx, "friday-turbo")
		if err != nil {
			return err
		}
		locked.MaxPlayers = 9
		return repo.SaveTournament(ctx, locked)
	})
	require.NoError(t, err)
	got, err = st.GetTournament(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 9, got.MaxPlayers)

	_, err = st.GetTournament(ctx, "missing")
	require.ErrorIs(t, err, settlement.ErrNotFound)
}

func TestSlugLookupPrefersNewestTournament(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := &engine.Tournament{ID: "older", Slug: "sunday-major", Owner: "owner", Token: "chips", MaxPlayers: 2, CreatedAt: base}
	newer := &engine.Tournament{ID: "newer", Slug: "sunday-major", Owner: "owner", Token: "chips", MaxPlayers: 2, CreatedAt: base.Add(time.Hour)}
	save := func(tr *engine.Tournament) {
		t.Helper()
		require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.SaveTournament(ctx, tr) }))
	}
	save(older)
	save(newer)

	got, err := st.GetTournament(ctx, "sunday-major")
	require.NoError(t, err)
	require.Equal(t, "newer", got.ID)

	// Updating the older tournament must not steal the slug back.
	older.MaxPlayers = 6
	save(older)
	got, err = st.GetTournament(ctx, "sunday-major")
	require.NoError(t, err)
	require.Equal(t, "newer", got.ID)

	got, err = st.GetTournament(ctx, "older")
	require.NoError(t, err)
	require.Equal(t, 6, got.MaxPlayers)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	g, err := engine.NewCashGame("g1", "owner", "chips", 1, 5, 2)
	require.NoError(t, err)
	require.NoError(t, st.InTx(ctx, func(repo settlement.Repository) error { return repo.SaveCashGame(ctx, g) }))

	got, err := st.GetCashGame(ctx, "g1")
	require.NoError(t, err)
	got.Players = append(got.Players, engine.Seat{Address: "x", Stack: 1})

	again, err := st.GetCashGame(ctx, "g1")
	require.NoError(t, err)
	require.Empty(t, again.Players)
}
