package engine

import (
	"testing"

	"stakepool/internal/escrow"

	"github.com/stretchr/testify/require"
)

const chips escrow.Token = "chips"

func newTestEngine(t *testing.T, wallets map[escrow.Address]int64) (*Engine, *escrow.Memory) {
	t.Helper()
	mem := escrow.NewMemory()
	for addr, amount := range wallets {
		require.NoError(t, mem.Mint(chips, escrow.Wallet(addr), amount))
	}
	return New(mem), mem
}

func walletOf(mem *escrow.Memory, addr escrow.Address) int64 {
	return mem.Balance(chips, escrow.Wallet(addr))
}
