package settlement

import (
	"context"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
)

// Repository is storage as seen from inside one unit of work. Its Apply posts
// ledger batches in the same transaction as the record writes.
type Repository interface {
	escrow.Ledger
	LockCashGame(ctx context.Context, id string) (*engine.CashGame, error)
	SaveCashGame(ctx context.Context, g *engine.CashGame) error
	DeleteCashGame(ctx context.Context, id string) error
	// LockTournament accepts an id or a slug.
	LockTournament(ctx context.Context, ref string) (*engine.Tournament, error)
	SaveTournament(ctx context.Context, t *engine.Tournament) error
}

// Store runs units of work and serves the read and treasury side.
type Store interface {
	NewID() string
	InTx(ctx context.Context, fn func(repo Repository) error) error
	GetCashGame(ctx context.Context, id string) (*engine.CashGame, error)
	GetTournament(ctx context.Context, ref string) (*engine.Tournament, error)

	Mint(ctx context.Context, token escrow.Token, to escrow.Account, amount int64) error
	IssueAsset(ctx context.Context, asset escrow.AssetID, owner escrow.Account) error
	Balance(ctx context.Context, token escrow.Token, account escrow.Account) (int64, error)
	AssetHolder(ctx context.Context, asset escrow.AssetID) (escrow.Account, error)
	ListEntries(ctx context.Context, f escrow.EntryFilter, limit, offset int) ([]escrow.Entry, error)
}
