// Package ledger posts escrow batches to Postgres. Balances live in accounts,
// every movement is journaled in ledger_entries and custody changes in
// asset_transfers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"stakepool/internal/escrow"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by pgx.Tx, *pgx.Conn and *pgxpool.Pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger must be bound to a transaction for Apply to be all-or-nothing; the
// caller commits or rolls back.
type Ledger struct {
	db DBTX
}

func New(db DBTX) *Ledger {
	return &Ledger{db: db}
}

type balanceKey struct {
	token   escrow.Token
	account escrow.Account
}

func (l *Ledger) Apply(ctx context.Context, b *escrow.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	balances, err := l.lockBalances(ctx, b.Moves)
	if err != nil {
		return err
	}
	for _, mv := range b.Moves {
		from := balanceKey{mv.Token, mv.From}
		to := balanceKey{mv.Token, mv.To}
		if balances[from] < mv.Amount {
			return fmt.Errorf("%w: %s holds %d %s, needs %d", escrow.ErrInsufficientFunds, mv.From, balances[from], mv.Token, mv.Amount)
		}
		balances[from] -= mv.Amount
		balances[to] += mv.Amount
	}
	for k, bal := range balances {
		if _, err := l.db.Exec(ctx,
			`UPDATE accounts SET balance = $3, updated_at = now() WHERE token = $1 AND account = $2`,
			string(k.token), string(k.account), bal); err != nil {
			return fmt.Errorf("update balance %s: %w", k.account, err)
		}
	}
	for _, mv := range b.Moves {
		if err := l.journal(ctx, mv.Token, mv.From, -mv.Amount, mv.Kind, b.RefType, b.RefID); err != nil {
			return err
		}
		if err := l.journal(ctx, mv.Token, mv.To, mv.Amount, mv.Kind, b.RefType, b.RefID); err != nil {
			return err
		}
	}
	for _, c := range b.Custody {
		if err := l.transfer(ctx, c, b.RefType, b.RefID); err != nil {
			return err
		}
	}
	return nil
}

// lockBalances creates missing account rows and locks every touched row in a
// stable order so concurrent batches cannot deadlock.
func (l *Ledger) lockBalances(ctx context.Context, moves []escrow.Move) (map[balanceKey]int64, error) {
	keys := []balanceKey{}
	seen := map[balanceKey]bool{}
	for _, mv := range moves {
		for _, k := range []balanceKey{{mv.Token, mv.From}, {mv.Token, mv.To}} {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].token != keys[j].token {
			return keys[i].token < keys[j].token
		}
		return keys[i].account < keys[j].account
	})
	out := make(map[balanceKey]int64, len(keys))
	for _, k := range keys {
		if _, err := l.db.Exec(ctx,
			`INSERT INTO accounts (token, account) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			string(k.token), string(k.account)); err != nil {
			return nil, fmt.Errorf("ensure account %s: %w", k.account, err)
		}
		var bal int64
		if err := l.db.QueryRow(ctx,
			`SELECT balance FROM accounts WHERE token = $1 AND account = $2 FOR UPDATE`,
			string(k.token), string(k.account)).Scan(&bal); err != nil {
			return nil, fmt.Errorf("lock account %s: %w", k.account, err)
		}
		out[k] = bal
	}
	return out, nil
}

func (l *Ledger) journal(ctx context.Context, token escrow.Token, account escrow.Account, amount int64, kind, refType, refID string) error {
	_, err := l.db.Exec(ctx,
		`INSERT INTO ledger_entries (token, account, amount, kind, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(token), string(account), amount, kind, refType, refID)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (l *Ledger) transfer(ctx context.Context, c escrow.CustodyTransfer, refType, refID string) error {
	var holder string
	err := l.db.QueryRow(ctx, `SELECT holder FROM assets WHERE id = $1 FOR UPDATE`, string(c.Asset)).Scan(&holder)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && holder != string(c.From)) {
		return fmt.Errorf("%w: %s is not held by %s", escrow.ErrAssetNotHeld, c.Asset, c.From)
	}
	if err != nil {
		return fmt.Errorf("lock asset %s: %w", c.Asset, err)
	}
	if _, err := l.db.Exec(ctx, `UPDATE assets SET holder = $2, updated_at = now() WHERE id = $1`, string(c.Asset), string(c.To)); err != nil {
		return fmt.Errorf("move asset %s: %w", c.Asset, err)
	}
	if _, err := l.db.Exec(ctx,
		`INSERT INTO asset_transfers (asset_id, from_account, to_account, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5)`,
		string(c.Asset), string(c.From), string(c.To), refType, refID); err != nil {
		return fmt.Errorf("insert asset transfer: %w", err)
	}
	return nil
}

// Mint credits amount from outside the system and journals it.
func (l *Ledger) Mint(ctx context.Context, token escrow.Token, to escrow.Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", escrow.ErrInvalidMove)
	}
	if _, err := l.db.Exec(ctx,
		`INSERT INTO accounts (token, account, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (token, account) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()`,
		string(token), string(to), amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	return l.journal(ctx, token, to, amount, "mint", "mint", "")
}

func (l *Ledger) Issue(ctx context.Context, asset escrow.AssetID, owner escrow.Account) error {
	tag, err := l.db.Exec(ctx, `INSERT INTO assets (id, holder) VALUES ($1, $2) ON CONFLICT DO NOTHING`, string(asset), string(owner))
	if err != nil {
		return fmt.Errorf("issue asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: asset %s already issued", escrow.ErrInvalidMove, asset)
	}
	return nil
}

func (l *Ledger) Balance(ctx context.Context, token escrow.Token, account escrow.Account) (int64, error) {
	var bal int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE token = $1 AND account = $2`, string(token), string(account)).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return bal, err
}

// Holder reports who holds asset; found is false for unknown assets.
func (l *Ledger) Holder(ctx context.Context, asset escrow.AssetID) (holder escrow.Account, found bool, err error) {
	var h string
	err = l.db.QueryRow(ctx, `SELECT holder FROM assets WHERE id = $1`, string(asset)).Scan(&h)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return escrow.Account(h), true, nil
}

// Entries lists journal lines newest first.
func (l *Ledger) Entries(ctx context.Context, f escrow.EntryFilter, limit, offset int) ([]escrow.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
		SELECT seq, token, account, amount, kind, ref_type, ref_id
		FROM ledger_entries
		WHERE ($1::text = '' OR account = $1) AND ($2::text = '' OR ref_type = $2) AND ($3::text = '' OR ref_id = $3)
		ORDER BY seq DESC
		LIMIT $4 OFFSET $5`,
		string(f.Account), f.RefType, f.RefID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []escrow.Entry{}
	for rows.Next() {
		var (
			e              escrow.Entry
			token, account string
		)
		if err := rows.Scan(&e.Seq, &token, &account, &e.Amount, &e.Kind, &e.RefType, &e.RefID); err != nil {
			return nil, err
		}
		e.Token, e.Account = escrow.Token(token), escrow.Account(account)
		out = append(out, e)
	}
	return out, rows.Err()
}
