// Package engine holds the settlement state machines for cash games and
// tournaments. Every operation validates, builds one ledger batch, applies it
// and only then mutates the record, so a rejected call leaves both untouched.
package engine

import (
	"context"

	"stakepool/internal/escrow"
)

type Engine struct {
	Ledger escrow.Ledger
}

func New(l escrow.Ledger) *Engine {
	return &Engine{Ledger: l}
}

func (e *Engine) apply(ctx context.Context, op, id string, b *escrow.Batch) error {
	if b.Empty() {
		return nil
	}
	if err := e.Ledger.Apply(ctx, b); err != nil {
		return &OpError{Op: op, EntityID: id, Err: err}
	}
	return nil
}
