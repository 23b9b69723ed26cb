package settlement

import (
	"context"
	"strings"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
)

func (s *Service) CreateCashGame(ctx context.Context, caller string, in CreateCashGameInput) (*CashGameResponse, error) {
	owner := address(caller)
	if owner == "" {
		return nil, engine.ErrUnauthorized
	}
	g, err := engine.NewCashGame(s.store.NewID(), owner, escrow.Token(strings.TrimSpace(in.Token)), in.MinDeposit, in.MaxDeposit, in.MaxPlayers)
	if err != nil {
		s.observe("create_cash_game", "", owner, err)
		return nil, err
	}
	now := s.clock.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	err = s.store.InTx(ctx, func(repo Repository) error {
		return repo.SaveCashGame(ctx, g)
	})
	s.observe("create_cash_game", g.ID, owner, err)
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) CashGame(ctx context.Context, id string) (*CashGameResponse, error) {
	g, err := s.store.GetCashGame(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrCashGameNotFound)
	}
	return cashGameResponse(g), nil
}

func (s *Service) Join(ctx context.Context, id, caller string, in AmountInput) (*CashGameResponse, error) {
	player := address(caller)
	g, err := s.cashGameOp(ctx, "join", id, player, func(e *engine.Engine, g *engine.CashGame) error {
		return e.Join(ctx, g, player, in.Amount)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) AddChips(ctx context.Context, id, caller string, in AmountInput) (*CashGameResponse, error) {
	player := address(caller)
	g, err := s.cashGameOp(ctx, "add_chips", id, player, func(e *engine.Engine, g *engine.CashGame) error {
		return e.AddChips(ctx, g, player, in.Amount)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) EjectPlayers(ctx context.Context, id, caller string, in EjectInput) (*CashGameResponse, error) {
	players := make([]escrow.Address, 0, len(in.Players))
	for _, p := range in.Players {
		players = append(players, address(p))
	}
	g, err := s.cashGameOp(ctx, "eject_players", id, address(caller), func(e *engine.Engine, g *engine.CashGame) error {
		return e.EjectPlayers(ctx, g, address(caller), players, in.Amounts)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) RefundPlayer(ctx context.Context, id, caller string, in RefundInput) (*CashGameResponse, error) {
	g, err := s.cashGameOp(ctx, "refund_player", id, address(caller), func(e *engine.Engine, g *engine.CashGame) error {
		return e.RefundPlayer(ctx, g, address(caller), address(in.Player), in.Amount)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) SetStatus(ctx context.Context, id, caller string, in StatusInput) (*CashGameResponse, error) {
	status := engine.GameStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	g, err := s.cashGameOp(ctx, "set_status", id, address(caller), func(e *engine.Engine, g *engine.CashGame) error {
		return e.SetStatus(g, address(caller), status)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

func (s *Service) SettleHands(ctx context.Context, id, caller string, in HandsInput) (*CashGameResponse, error) {
	adjustments := make([]engine.Adjustment, 0, len(in.Adjustments))
	for _, a := range in.Adjustments {
		adjustments = append(adjustments, engine.Adjustment{Player: address(a.Player), Delta: a.Delta})
	}
	g, err := s.cashGameOp(ctx, "settle_hands", id, address(caller), func(e *engine.Engine, g *engine.CashGame) error {
		return e.SettleHands(g, address(caller), adjustments)
	})
	if err != nil {
		return nil, err
	}
	return cashGameResponse(g), nil
}

// CloseCashGame sweeps the rake and deletes the game in the same unit of work.
func (s *Service) CloseCashGame(ctx context.Context, id, caller string, in CloseInput) (*CloseResponse, error) {
	owner := address(caller)
	var out *CloseResponse
	err := s.store.InTx(ctx, func(repo Repository) error {
		g, err := repo.LockCashGame(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrCashGameNotFound)
		}
		dest := address(in.Destination)
		swept, err := engine.New(repo).CloseCashGame(ctx, g, owner, dest)
		if err != nil {
			return err
		}
		if dest == "" {
			dest = g.Owner
		}
		if err := repo.DeleteCashGame(ctx, g.ID); err != nil {
			return err
		}
		out = &CloseResponse{ID: g.ID, Destination: string(dest), Swept: swept}
		return nil
	})
	s.observe("close_cash_game", id, owner, err)
	if err != nil {
		return nil, err
	}
	metricSweptTotal.Add(out.Swept)
	return out, nil
}
