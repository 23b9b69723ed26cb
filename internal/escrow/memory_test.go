package escrow

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const chips Token = "CHIP"

func TestMemoryApplyMovesFunds(t *testing.T) {
	m := NewMemory()
	alice := Wallet("alice")
	pool := Escrow("cash_game", "g1")
	require.NoError(t, m.Mint(chips, alice, 500))

	b := NewBatch("cash_game", "g1").Move(chips, 200, alice, pool, "join")
	require.NoError(t, m.Apply(context.Background(), b))

	require.Equal(t, int64(300), m.Balance(chips, alice))
	require.Equal(t, int64(200), m.Balance(chips, pool))
	// mint + debit + credit
	require.Len(t, m.Journal(), 3)
}

func TestMemoryApplyIsAllOrNothing(t *testing.T) {
	m := NewMemory()
	pool := Escrow("cash_game", "g1")
	require.NoError(t, m.Mint(chips, pool, 100))

	b := NewBatch("cash_game", "g1").
		Move(chips, 60, pool, Wallet("alice"), "eject").
		Move(chips, 60, pool, Wallet("bob"), "eject")
	err := m.Apply(context.Background(), b)
	require.True(t, errors.Is(err, ErrInsufficientFunds), "got %v", err)

	require.Equal(t, int64(100), m.Balance(chips, pool))
	require.Zero(t, m.Balance(chips, Wallet("alice")))
	require.Len(t, m.Journal(), 1)
}

func TestMemoryRejectsBalanceOverflow(t *testing.T) {
	m := NewMemory()
	alice, bob := Wallet("alice"), Wallet("bob")
	require.NoError(t, m.Mint(chips, alice, math.MaxInt64))
	require.NoError(t, m.Mint(chips, bob, math.MaxInt64-1))

	err := m.Mint(chips, alice, 1)
	require.ErrorIs(t, err, ErrInvalidMove)
	require.Equal(t, int64(math.MaxInt64), m.Balance(chips, alice))

	err = m.Apply(context.Background(), NewBatch("transfer", "t1").Move(chips, 2, alice, bob, "transfer"))
	require.ErrorIs(t, err, ErrInvalidMove)
	require.Equal(t, int64(math.MaxInt64), m.Balance(chips, alice))
	require.Equal(t, int64(math.MaxInt64-1), m.Balance(chips, bob))
	require.Len(t, m.Journal(), 2)
}

func TestMemoryCustody(t *testing.T) {
	m := NewMemory()
	owner := Wallet("owner")
	pool := Escrow("tournament", "t1")
	require.NoError(t, m.Issue("nft-1", owner))
	require.Error(t, m.Issue("nft-1", owner))

	require.NoError(t, m.Apply(context.Background(), NewBatch("tournament", "t1").Transfer("nft-1", owner, pool)))
	holder, ok := m.Holder("nft-1")
	require.True(t, ok)
	require.Equal(t, pool, holder)

	err := m.Apply(context.Background(), NewBatch("tournament", "t1").Transfer("nft-1", owner, Wallet("alice")))
	require.True(t, errors.Is(err, ErrAssetNotHeld), "got %v", err)
}

func TestMemorySnapshotRestore(t *testing.T) {
	m := NewMemory()
	alice := Wallet("alice")
	require.NoError(t, m.Mint(chips, alice, 50))
	snap := m.Snapshot()

	require.NoError(t, m.Apply(context.Background(), NewBatch("x", "1").Move(chips, 50, alice, Escrow("x", "1"), "test")))
	require.NoError(t, m.Restore(snap))

	require.Equal(t, int64(50), m.Balance(chips, alice))
	require.Len(t, m.Journal(), 1)
}

func TestBatchValidate(t *testing.T) {
	tests := []struct {
		name string
		b    *Batch
		ok   bool
	}{
		{"empty", NewBatch("x", "1"), true},
		{"zero amount skipped", NewBatch("x", "1").Move(chips, 0, Wallet("a"), Wallet("a"), "noop"), true},
		{"negative", NewBatch("x", "1").Move(chips, -1, Wallet("a"), Wallet("b"), "bad"), false},
		{"self move", NewBatch("x", "1").Move(chips, 1, Wallet("a"), Wallet("a"), "bad"), false},
		{"missing token", NewBatch("x", "1").Move("", 1, Wallet("a"), Wallet("b"), "bad"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidMove)
			}
		})
	}
}

func TestAccountHelpers(t *testing.T) {
	w := Wallet("alice")
	require.True(t, w.IsWallet())
	require.Equal(t, Address("alice"), w.Address())
	e := Escrow("tournament", "t1")
	require.True(t, e.IsEscrow())
	require.Equal(t, Address(""), e.Address())
	require.Equal(t, "escrow:tournament:t1", e.String())
}

func TestMemoryEntriesFilter(t *testing.T) {
	m := NewMemory()
	alice := Wallet("alice")
	require.NoError(t, m.Mint(chips, alice, 500))
	require.NoError(t, m.Apply(context.Background(), NewBatch("cash_game", "g1").Move(chips, 100, alice, Escrow("cash_game", "g1"), "join")))
	require.NoError(t, m.Apply(context.Background(), NewBatch("cash_game", "g2").Move(chips, 50, alice, Escrow("cash_game", "g2"), "join")))

	got := m.Entries(EntryFilter{Account: alice}, 10, 0)
	require.Len(t, got, 3)
	require.Equal(t, int64(-50), got[0].Amount)
	require.Equal(t, "mint", got[2].Kind)

	got = m.Entries(EntryFilter{RefID: "g1"}, 10, 0)
	require.Len(t, got, 2)

	got = m.Entries(EntryFilter{Account: alice}, 1, 1)
	require.Len(t, got, 1)
	require.Equal(t, int64(-100), got[0].Amount)
}
