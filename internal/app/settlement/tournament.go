package settlement

import (
	"context"
	"strings"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
)

// CreateTournament funds the guarantee from the caller's wallet. Without an
// explicit split the payout table tier for ExpectedPlayers (else MaxPlayers) is used.
func (s *Service) CreateTournament(ctx context.Context, caller string, in CreateTournamentInput) (*TournamentResponse, error) {
	owner := address(caller)
	if owner == "" {
		return nil, engine.ErrUnauthorized
	}
	structure := in.Payouts
	if len(structure) == 0 {
		field := in.ExpectedPlayers
		if field <= 0 {
			field = in.MaxPlayers
		}
		structure = s.payouts.Select(field)
	}
	cfg := engine.TournamentConfig{
		ID:               s.store.NewID(),
		Name:             strings.TrimSpace(in.Name),
		Owner:            owner,
		Token:            escrow.Token(strings.TrimSpace(in.Token)),
		EntryCost:        in.EntryCost,
		EntryFee:         in.EntryFee,
		MaxPlayers:       in.MaxPlayers,
		Guarantee:        in.Guarantee,
		RegistrationOpen: in.RegistrationOpen,
		PayoutStructure:  structure,
	}
	var out *engine.Tournament
	err := s.store.InTx(ctx, func(repo Repository) error {
		t, err := engine.New(repo).CreateTournament(ctx, cfg)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		t.CreatedAt, t.UpdatedAt = now, now
		if err := repo.SaveTournament(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	s.observe("create_tournament", cfg.ID, owner, err)
	if err != nil {
		return nil, err
	}
	return tournamentResponse(out), nil
}

func (s *Service) Tournament(ctx context.Context, ref string) (*TournamentResponse, error) {
	t, err := s.store.GetTournament(ctx, ref)
	if err != nil {
		return nil, mapNotFound(err, ErrTournamentNotFound)
	}
	return tournamentResponse(t), nil
}

func (s *Service) Register(ctx context.Context, ref, caller string) (*TournamentResponse, error) {
	player := address(caller)
	t, err := s.tournamentOp(ctx, "register", ref, player, func(e *engine.Engine, t *engine.Tournament) error {
		return e.Register(ctx, t, player)
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

func (s *Service) Unregister(ctx context.Context, ref, caller string) (*TournamentResponse, error) {
	player := address(caller)
	t, err := s.tournamentOp(ctx, "unregister", ref, player, func(e *engine.Engine, t *engine.Tournament) error {
		return e.Unregister(ctx, t, player)
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

func (s *Service) Refund(ctx context.Context, ref, caller string, in PlayerInput) (*TournamentResponse, error) {
	t, err := s.tournamentOp(ctx, "refund", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		return e.Refund(ctx, t, address(caller), address(in.Player))
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

func (s *Service) StartTournament(ctx context.Context, ref, caller string) (*TournamentResponse, error) {
	t, err := s.tournamentOp(ctx, "start_tournament", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		return e.StartTournament(t, address(caller))
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

func (s *Service) FlipRegistration(ctx context.Context, ref, caller string) (*RegistrationResponse, error) {
	var open bool
	t, err := s.tournamentOp(ctx, "flip_registration", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		var err error
		open, err = e.FlipRegistration(t, address(caller))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{ID: t.ID, RegistrationOpen: open}, nil
}

func (s *Service) UpdatePayouts(ctx context.Context, ref, caller string, in PayoutsInput) (*TournamentResponse, error) {
	t, err := s.tournamentOp(ctx, "update_payouts", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		return e.UpdatePayouts(t, address(caller), in.Payouts)
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

// ApplyPayoutTable replaces the split with the table tier for the field size,
// defaulting to the entries paid so far.
func (s *Service) ApplyPayoutTable(ctx context.Context, ref, caller string, in PayoutTableInput) (*TournamentResponse, error) {
	if in.FieldSize < 0 {
		return nil, ErrInvalidRequest
	}
	t, err := s.tournamentOp(ctx, "apply_payout_table", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		field := in.FieldSize
		if field == 0 {
			field = t.TotalEntries
		}
		return e.UpdatePayouts(t, address(caller), s.payouts.Select(field))
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

func (s *Service) SettlePlayer(ctx context.Context, ref, caller string, in PlayerInput) (*ResultItem, error) {
	var res engine.Result
	_, err := s.tournamentOp(ctx, "settle_player", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		var err error
		res, err = e.SettlePlayer(ctx, t, address(caller), address(in.Player))
		if err != nil {
			return err
		}
		res.SettledAt = s.clock.Now()
		t.Results[len(t.Results)-1].SettledAt = res.SettledAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricPrizesPaid.Add(res.Amount)
	item := resultItem(res)
	return &item, nil
}

func (s *Service) AddPrize(ctx context.Context, ref, caller string, in PrizeInput) (*TournamentResponse, error) {
	t, err := s.tournamentOp(ctx, "add_prize", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		return e.AddPrize(ctx, t, address(caller), in.Place, escrow.AssetID(strings.TrimSpace(in.Asset)))
	})
	if err != nil {
		return nil, err
	}
	return tournamentResponse(t), nil
}

// CloseTournament sweeps what is left. The closed record is kept for its results.
func (s *Service) CloseTournament(ctx context.Context, ref, caller string, in CloseInput) (*CloseResponse, error) {
	var out engine.Closeout
	t, err := s.tournamentOp(ctx, "close_tournament", ref, address(caller), func(e *engine.Engine, t *engine.Tournament) error {
		var err error
		out, err = e.CloseTournament(ctx, t, address(caller), address(in.Destination))
		return err
	})
	if err != nil {
		return nil, err
	}
	metricSweptTotal.Add(out.Swept)
	return &CloseResponse{
		ID:          t.ID,
		Destination: string(out.Destination),
		Swept:       out.Swept,
		Prizes:      assetStrings(out.Prizes),
	}, nil
}
