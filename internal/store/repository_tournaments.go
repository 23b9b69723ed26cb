package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"
	"stakepool/internal/ledger"

	"github.com/jackc/pgx/v5"
)

const tournamentColumns = `id, name, slug, owner, token, escrow_balance, entry_cost, entry_fee, max_players,
	guarantee, registration_open, has_started, closed, active_players, total_entries, payout_structure,
	fees_collected, paid_out, created_at, updated_at`

// loadTournament resolves ref as an id first, then as the newest tournament with that slug.
func loadTournament(ctx context.Context, db ledger.DBTX, ref string, forUpdate bool) (*engine.Tournament, error) {
	lock := ""
	if forUpdate {
		lock = ` FOR UPDATE`
	}
	t, err := scanTournament(db.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`+lock, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		t, err = scanTournament(db.QueryRow(ctx,
			`SELECT `+tournamentColumns+` FROM tournaments WHERE slug = $1 ORDER BY created_at DESC LIMIT 1`+lock, ref))
	}
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := loadTournamentChildren(ctx, db, t); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTournament(row pgx.Row) (*engine.Tournament, error) {
	var (
		t            engine.Tournament
		owner, token string
		structure    []int32
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &owner, &token, &t.EscrowBalance, &t.EntryCost, &t.EntryFee,
		&t.MaxPlayers, &t.Guarantee, &t.RegistrationOpen, &t.HasStarted, &t.Closed, &t.ActivePlayers,
		&t.TotalEntries, &structure, &t.FeesCollected, &t.PaidOut, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Owner, t.Token = escrow.Address(owner), escrow.Token(token)
	t.PayoutStructure = ints(structure)
	return &t, nil
}

func loadTournamentChildren(ctx context.Context, db ledger.DBTX, t *engine.Tournament) error {
	t.Entries = []engine.Entry{}
	rows, err := db.Query(ctx, `SELECT address, active, entries, last_place, winnings
		FROM tournament_entries WHERE tournament_id = $1 ORDER BY entry_no`, t.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			e    engine.Entry
			addr string
		)
		if err := rows.Scan(&addr, &e.Active, &e.Entries, &e.LastPlace, &e.Winnings); err != nil {
			rows.Close()
			return err
		}
		e.Address = escrow.Address(addr)
		t.Entries = append(t.Entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	t.PrizeQueue = []engine.PrizeQueue{}
	rows, err = db.Query(ctx, `SELECT place, asset_id FROM tournament_prizes WHERE tournament_id = $1 ORDER BY queue_no`, t.ID)
	if err != nil {
		return err
	}
	slot := map[int]int{}
	for rows.Next() {
		var (
			place int
			asset string
		)
		if err := rows.Scan(&place, &asset); err != nil {
			rows.Close()
			return err
		}
		i, ok := slot[place]
		if !ok {
			t.PrizeQueue = append(t.PrizeQueue, engine.PrizeQueue{Place: place})
			i = len(t.PrizeQueue) - 1
			slot[place] = i
		}
		t.PrizeQueue[i].Assets = append(t.PrizeQueue[i].Assets, escrow.AssetID(asset))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	t.Results = []engine.Result{}
	rows, err = db.Query(ctx, `SELECT place, address, amount, prizes, settled_at
		FROM tournament_results WHERE tournament_id = $1 ORDER BY result_no`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r       engine.Result
			addr    string
			prizes  []string
			settled time.Time
		)
		if err := rows.Scan(&r.Place, &addr, &r.Amount, &prizes, &settled); err != nil {
			return err
		}
		r.Address, r.Prizes, r.SettledAt = escrow.Address(addr), assetIDs(prizes), settled
		t.Results = append(t.Results, r)
	}
	return rows.Err()
}

func saveTournament(ctx context.Context, tx pgx.Tx, t *engine.Tournament) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO tournaments (`+tournamentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			escrow_balance = EXCLUDED.escrow_balance,
			registration_open = EXCLUDED.registration_open,
			has_started = EXCLUDED.has_started,
			closed = EXCLUDED.closed,
			active_players = EXCLUDED.active_players,
			total_entries = EXCLUDED.total_entries,
			payout_structure = EXCLUDED.payout_structure,
			fees_collected = EXCLUDED.fees_collected,
			paid_out = EXCLUDED.paid_out,
			updated_at = EXCLUDED.updated_at`,
		t.ID, t.Name, t.Slug, string(t.Owner), string(t.Token), t.EscrowBalance, t.EntryCost, t.EntryFee,
		t.MaxPlayers, t.Guarantee, t.RegistrationOpen, t.HasStarted, t.Closed, t.ActivePlayers,
		t.TotalEntries, int32s(t.PayoutStructure), t.FeesCollected, t.PaidOut, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM tournament_entries WHERE tournament_id = $1`, t.ID)
	batch.Queue(`DELETE FROM tournament_prizes WHERE tournament_id = $1`, t.ID)
	for i, e := range t.Entries {
		batch.Queue(`INSERT INTO tournament_entries (tournament_id, entry_no, address, active, entries, last_place, winnings)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, i, string(e.Address), e.Active, e.Entries, e.LastPlace, e.Winnings)
	}
	n := 0
	for _, q := range t.PrizeQueue {
		for _, a := range q.Assets {
			batch.Queue(`INSERT INTO tournament_prizes (tournament_id, queue_no, place, asset_id) VALUES ($1, $2, $3, $4)`,
				t.ID, n, q.Place, string(a))
			n++
		}
	}
	// Results are append-only.
	for i, r := range t.Results {
		batch.Queue(`INSERT INTO tournament_results (tournament_id, result_no, place, address, amount, prizes, settled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (tournament_id, result_no) DO NOTHING`,
			t.ID, i, r.Place, string(r.Address), r.Amount, assetStrings(r.Prizes), r.SettledAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save tournament rows: %w", err)
	}
	return nil
}
