package store

import (
	"context"

	"stakepool/internal/escrow"
	"stakepool/internal/ledger"

	"github.com/jackc/pgx/v5"
)

func (s *Store) Mint(ctx context.Context, token escrow.Token, to escrow.Account, amount int64) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ledger.New(tx).Mint(ctx, token, to, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) IssueAsset(ctx context.Context, asset escrow.AssetID, owner escrow.Account) error {
	return ledger.New(s.Pool).Issue(ctx, asset, owner)
}

func (s *Store) Balance(ctx context.Context, token escrow.Token, account escrow.Account) (int64, error) {
	return ledger.New(s.Pool).Balance(ctx, token, account)
}

func (s *Store) AssetHolder(ctx context.Context, asset escrow.AssetID) (escrow.Account, error) {
	holder, found, err := ledger.New(s.Pool).Holder(ctx, asset)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}
	return holder, nil
}

func (s *Store) ListEntries(ctx context.Context, f escrow.EntryFilter, limit, offset int) ([]escrow.Entry, error) {
	return ledger.New(s.Pool).Entries(ctx, f, limit, offset)
}
