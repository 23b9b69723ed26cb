package settlement

import (
	"context"
	"errors"
	"strings"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
	"stakepool/internal/payout"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

// Service runs engine operations inside units of work: lock the record, apply
// the operation and its ledger batch, save, commit.
type Service struct {
	store   Store
	payouts *payout.Table
	clock   quartz.Clock
}

func NewService(st Store, payouts *payout.Table, clock quartz.Clock) *Service {
	if payouts == nil {
		payouts = payout.Default()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{store: st, payouts: payouts, clock: clock}
}

func (s *Service) observe(op, entityID string, caller escrow.Address, err error) {
	metricOpsTotal.Add(op, 1)
	if err == nil {
		log.Info().Str("op", op).Str("entity_id", entityID).Str("caller", string(caller)).Msg("settlement_ok")
		return
	}
	code := Code(err)
	metricOpErrors.Add(code, 1)
	evt := log.Warn()
	if code == CodeInternal {
		evt = log.Error()
	}
	evt.Err(err).Str("op", op).Str("entity_id", entityID).Str("caller", string(caller)).Str("code", code).Msg("settlement_failed")
}

const CodeInternal = "internal_error"

// Code names the failure kind err carries, for logs and API bodies.
func Code(err error) string {
	if k := engine.Kind(err); k != nil {
		return k.Error()
	}
	for _, known := range []error{ErrCashGameNotFound, ErrTournamentNotFound, ErrAssetNotFound, ErrInvalidRequest} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return CodeInternal
}

func address(v string) escrow.Address {
	return escrow.Address(strings.TrimSpace(v))
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound
	}
	return err
}

// cashGameOp runs fn against a locked cash game and saves it on success.
func (s *Service) cashGameOp(ctx context.Context, op, id string, caller escrow.Address, fn func(e *engine.Engine, g *engine.CashGame) error) (*engine.CashGame, error) {
	var out *engine.CashGame
	err := s.store.InTx(ctx, func(repo Repository) error {
		g, err := repo.LockCashGame(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrCashGameNotFound)
		}
		if err := fn(engine.New(repo), g); err != nil {
			return err
		}
		g.UpdatedAt = s.clock.Now()
		if err := repo.SaveCashGame(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	s.observe(op, id, caller, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// tournamentOp is cashGameOp for tournaments; ref may be an id or a slug.
func (s *Service) tournamentOp(ctx context.Context, op, ref string, caller escrow.Address, fn func(e *engine.Engine, t *engine.Tournament) error) (*engine.Tournament, error) {
	var out *engine.Tournament
	err := s.store.InTx(ctx, func(repo Repository) error {
		t, err := repo.LockTournament(ctx, ref)
		if err != nil {
			return mapNotFound(err, ErrTournamentNotFound)
		}
		if err := fn(engine.New(repo), t); err != nil {
			return err
		}
		t.UpdatedAt = s.clock.Now()
		if err := repo.SaveTournament(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	s.observe(op, ref, caller, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
