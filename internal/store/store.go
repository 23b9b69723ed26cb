package store

import (
	"context"
	"fmt"
	"time"

	"stakepool/internal/app/settlement"
	"stakepool/internal/engine"
	"stakepool/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned for missing records.
var ErrNotFound = settlement.ErrNotFound

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Store) NewID() string {
	return NewID()
}

// InTx runs fn in one transaction. Records are locked with FOR UPDATE and
// ledger batches post on the same transaction, so an error anywhere rolls
// back both.
func (s *Store) InTx(ctx context.Context, fn func(repo settlement.Repository) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&txRepo{tx: tx, Ledger: ledger.New(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type txRepo struct {
	*ledger.Ledger
	tx pgx.Tx
}

func (r *txRepo) LockCashGame(ctx context.Context, id string) (*engine.CashGame, error) {
	return loadCashGame(ctx, r.tx, id, true)
}

func (r *txRepo) SaveCashGame(ctx context.Context, g *engine.CashGame) error {
	return saveCashGame(ctx, r.tx, g)
}

func (r *txRepo) DeleteCashGame(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM cash_games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepo) LockTournament(ctx context.Context, ref string) (*engine.Tournament, error) {
	return loadTournament(ctx, r.tx, ref, true)
}

func (r *txRepo) SaveTournament(ctx context.Context, t *engine.Tournament) error {
	return saveTournament(ctx, r.tx, t)
}

func (s *Store) GetCashGame(ctx context.Context, id string) (*engine.CashGame, error) {
	return loadCashGame(ctx, s.Pool, id, false)
}

func (s *Store) GetTournament(ctx context.Context, ref string) (*engine.Tournament, error) {
	return loadTournament(ctx, s.Pool, ref, false)
}
