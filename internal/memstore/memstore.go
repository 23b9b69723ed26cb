// Package memstore keeps cash games, tournaments and the escrow ledger in
// process memory. It backs STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"errors"
	"sync"

	"stakepool/internal/app/settlement"
	"stakepool/internal/engine"
	"stakepool/internal/escrow"
	"stakepool/internal/store"
)

// Store serializes every unit of work behind one mutex.
type Store struct {
	mu          sync.Mutex
	ledger      *escrow.Memory
	games       map[string]*engine.CashGame
	tournaments map[string]*engine.Tournament
	slugs       map[string]string
}

func New() *Store {
	return &Store{
		ledger:      escrow.NewMemory(),
		games:       map[string]*engine.CashGame{},
		tournaments: map[string]*engine.Tournament{},
		slugs:       map[string]string{},
	}
}

func (s *Store) NewID() string {
	return store.NewID()
}

// Ping always succeeds; it lets the memory store back the health check.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Ledger exposes the underlying journal for inspection.
func (s *Store) Ledger() *escrow.Memory {
	return s.ledger
}

// InTx runs fn against staged copies. Record writes land only if fn succeeds;
// ledger changes are rolled back from a snapshot otherwise.
func (s *Store) InTx(ctx context.Context, fn func(repo settlement.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.ledger.Snapshot()
	tx := &txRepo{
		s:           s,
		games:       map[string]*engine.CashGame{},
		deleted:     map[string]bool{},
		tournaments: map[string]*engine.Tournament{},
	}
	err := fn(tx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if rerr := s.ledger.Restore(snap); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	for id := range tx.deleted {
		delete(s.games, id)
	}
	for id, g := range tx.games {
		s.games[id] = g
	}
	for id, t := range tx.tournaments {
		s.tournaments[id] = t
		s.bindSlug(t)
	}
	return nil
}

// bindSlug points a slug at the newest tournament carrying it, matching the
// created_at ordering of the Postgres lookup.
func (s *Store) bindSlug(t *engine.Tournament) {
	if t.Slug == "" {
		return
	}
	if cur, ok := s.tournaments[s.slugs[t.Slug]]; ok && cur.ID != t.ID {
		if t.CreatedAt.Before(cur.CreatedAt) || (t.CreatedAt.Equal(cur.CreatedAt) && t.ID < cur.ID) {
			return
		}
	}
	s.slugs[t.Slug] = t.ID
}

func (s *Store) GetCashGame(_ context.Context, id string) (*engine.CashGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, settlement.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *Store) GetTournament(_ context.Context, ref string) (*engine.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournament(ref)
	if !ok {
		return nil, settlement.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Store) tournament(ref string) (*engine.Tournament, bool) {
	if t, ok := s.tournaments[ref]; ok {
		return t, true
	}
	if id, ok := s.slugs[ref]; ok {
		t, ok := s.tournaments[id]
		return t, ok
	}
	return nil, false
}

// Mint and IssueAsset take the store lock so a rollback cannot erase them.
func (s *Store) Mint(_ context.Context, token escrow.Token, to escrow.Account, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Mint(token, to, amount)
}

func (s *Store) IssueAsset(_ context.Context, asset escrow.AssetID, owner escrow.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Issue(asset, owner)
}

func (s *Store) Balance(_ context.Context, token escrow.Token, account escrow.Account) (int64, error) {
	return s.ledger.Balance(token, account), nil
}

func (s *Store) AssetHolder(_ context.Context, asset escrow.AssetID) (escrow.Account, error) {
	holder, ok := s.ledger.Holder(asset)
	if !ok {
		return "", settlement.ErrNotFound
	}
	return holder, nil
}

func (s *Store) ListEntries(_ context.Context, f escrow.EntryFilter, limit, offset int) ([]escrow.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.ledger.Entries(f, limit, offset), nil
}

// txRepo is the Repository handed to one unit of work. The store mutex is held.
type txRepo struct {
	s           *Store
	games       map[string]*engine.CashGame
	deleted     map[string]bool
	tournaments map[string]*engine.Tournament
}

func (r *txRepo) Apply(ctx context.Context, b *escrow.Batch) error {
	return r.s.ledger.Apply(ctx, b)
}

func (r *txRepo) LockCashGame(_ context.Context, id string) (*engine.CashGame, error) {
	if r.deleted[id] {
		return nil, settlement.ErrNotFound
	}
	if g, ok := r.games[id]; ok {
		return g.Clone(), nil
	}
	g, ok := r.s.games[id]
	if !ok {
		return nil, settlement.ErrNotFound
	}
	return g.Clone(), nil
}

func (r *txRepo) SaveCashGame(_ context.Context, g *engine.CashGame) error {
	delete(r.deleted, g.ID)
	r.games[g.ID] = g.Clone()
	return nil
}

func (r *txRepo) DeleteCashGame(_ context.Context, id string) error {
	if _, err := r.LockCashGame(context.Background(), id); err != nil {
		return err
	}
	delete(r.games, id)
	r.deleted[id] = true
	return nil
}

func (r *txRepo) LockTournament(_ context.Context, ref string) (*engine.Tournament, error) {
	if t, ok := r.tournaments[ref]; ok {
		return t.Clone(), nil
	}
	for _, t := range r.tournaments {
		if t.Slug == ref {
			return t.Clone(), nil
		}
	}
	t, ok := r.s.tournament(ref)
	if !ok {
		return nil, settlement.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *txRepo) SaveTournament(_ context.Context, t *engine.Tournament) error {
	r.tournaments[t.ID] = t.Clone()
	return nil
}
