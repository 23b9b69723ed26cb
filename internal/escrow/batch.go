package escrow

import (
	"context"
	"fmt"
)

// Move debits From and credits To by Amount units of Token.
type Move struct {
	Token  Token
	Amount int64
	From   Account
	To     Account
	Kind   string
}

// CustodyTransfer hands a non-fungible asset from one account to another.
type CustodyTransfer struct {
	Asset AssetID
	From  Account
	To    Account
}

// Batch is the unit of atomicity: either every move and transfer lands or none does.
type Batch struct {
	RefType string
	RefID   string
	Moves   []Move
	Custody []CustodyTransfer
}

func NewBatch(refType, refID string) *Batch {
	return &Batch{RefType: refType, RefID: refID}
}

// Move appends a fund movement. Zero amounts are skipped so out-of-the-money
// settlements do not leave empty journal rows.
func (b *Batch) Move(token Token, amount int64, from, to Account, kind string) *Batch {
	if amount == 0 {
		return b
	}
	b.Moves = append(b.Moves, Move{Token: token, Amount: amount, From: from, To: to, Kind: kind})
	return b
}

func (b *Batch) Transfer(asset AssetID, from, to Account) *Batch {
	b.Custody = append(b.Custody, CustodyTransfer{Asset: asset, From: from, To: to})
	return b
}

func (b *Batch) Empty() bool {
	return len(b.Moves) == 0 && len(b.Custody) == 0
}

// Validate rejects malformed items before any implementation touches balances.
func (b *Batch) Validate() error {
	for i, m := range b.Moves {
		if m.Amount < 0 {
			return fmt.Errorf("%w: move %d has negative amount %d", ErrInvalidMove, i, m.Amount)
		}
		if m.Token == "" || m.From == "" || m.To == "" {
			return fmt.Errorf("%w: move %d is missing token or account", ErrInvalidMove, i)
		}
		if m.From == m.To {
			return fmt.Errorf("%w: move %d moves %s onto itself", ErrInvalidMove, i, m.From)
		}
	}
	for i, c := range b.Custody {
		if c.Asset == "" || c.From == "" || c.To == "" {
			return fmt.Errorf("%w: custody transfer %d is incomplete", ErrInvalidMove, i)
		}
	}
	return nil
}

// Ledger applies batches atomically. Implementations fail only with
// ErrInsufficientFunds, ErrAssetNotHeld or ErrInvalidMove, or with a storage error.
type Ledger interface {
	Apply(ctx context.Context, b *Batch) error
}
