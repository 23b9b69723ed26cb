package store

import (
	"context"
	"fmt"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
	"stakepool/internal/ledger"

	"github.com/jackc/pgx/v5"
)

func loadCashGame(ctx context.Context, db ledger.DBTX, id string, forUpdate bool) (*engine.CashGame, error) {
	q := `SELECT id, owner, token, status, escrow_balance, min_deposit, max_deposit, max_players, created_at, updated_at
		FROM cash_games WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var (
		g                   engine.CashGame
		owner, token, state string
	)
	err := db.QueryRow(ctx, q, id).Scan(&g.ID, &owner, &token, &state, &g.EscrowBalance,
		&g.MinDeposit, &g.MaxDeposit, &g.MaxPlayers, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	g.Owner, g.Token, g.Status = escrow.Address(owner), escrow.Token(token), engine.GameStatus(state)

	rows, err := db.Query(ctx, `SELECT address, stack, add_on FROM cash_game_seats WHERE game_id = $1 ORDER BY seat_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	g.Players = []engine.Seat{}
	for rows.Next() {
		var (
			s    engine.Seat
			addr string
		)
		if err := rows.Scan(&addr, &s.Stack, &s.AddOn); err != nil {
			return nil, err
		}
		s.Address = escrow.Address(addr)
		g.Players = append(g.Players, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &g, nil
}

func saveCashGame(ctx context.Context, tx pgx.Tx, g *engine.CashGame) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO cash_games (id, owner, token, status, escrow_balance, min_deposit, max_deposit, max_players, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			escrow_balance = EXCLUDED.escrow_balance,
			updated_at = EXCLUDED.updated_at`,
		g.ID, string(g.Owner), string(g.Token), string(g.Status), g.EscrowBalance,
		g.MinDeposit, g.MaxDeposit, g.MaxPlayers, g.CreatedAt, g.UpdatedAt); err != nil {
		return fmt.Errorf("save cash game: %w", err)
	}
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM cash_game_seats WHERE game_id = $1`, g.ID)
	for i, s := range g.Players {
		batch.Queue(`INSERT INTO cash_game_seats (game_id, seat_no, address, stack, add_on) VALUES ($1, $2, $3, $4, $5)`,
			g.ID, i, string(s.Address), s.Stack, s.AddOn)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save seats: %w", err)
	}
	return nil
}
