package escrow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// Entry is one signed line of the journal kept by Memory.
type Entry struct {
	Seq     int64
	Token   Token
	Account Account
	Amount  int64
	Kind    string
	RefType string
	RefID   string
}

type balanceKey struct {
	token   Token
	account Account
}

// Memory is an in-process Ledger. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	balances map[balanceKey]int64
	assets   map[AssetID]Account
	journal  []Entry
	seq      int64
}

func NewMemory() *Memory {
	return &Memory{
		balances: map[balanceKey]int64{},
		assets:   map[AssetID]Account{},
	}
}

// Mint credits units from outside the system, e.g. a wallet top-up.
func (m *Memory) Mint(token Token, to Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", ErrInvalidMove)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey{token, to}
	if m.balances[key] > math.MaxInt64-amount {
		return fmt.Errorf("%w: mint would overflow %s balance", ErrInvalidMove, to)
	}
	m.balances[key] += amount
	m.record(Entry{Token: token, Account: to, Amount: amount, Kind: "mint", RefType: "mint"})
	return nil
}

// Issue registers a new asset held by owner.
func (m *Memory) Issue(asset AssetID, owner Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[asset]; ok {
		return fmt.Errorf("%w: asset %s already issued", ErrInvalidMove, asset)
	}
	m.assets[asset] = owner
	return nil
}

func (m *Memory) Balance(token Token, account Account) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[balanceKey{token, account}]
}

func (m *Memory) Holder(asset AssetID) (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.assets[asset]
	return acct, ok
}

func (m *Memory) Journal() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.journal))
	copy(out, m.journal)
	return out
}

func (m *Memory) Apply(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Stage every change on scratch copies so a failing item leaves nothing behind.
	staged := map[balanceKey]int64{}
	get := func(k balanceKey) int64 {
		if v, ok := staged[k]; ok {
			return v
		}
		return m.balances[k]
	}
	for _, mv := range b.Moves {
		from := balanceKey{mv.Token, mv.From}
		to := balanceKey{mv.Token, mv.To}
		bal := get(from)
		if bal < mv.Amount {
			return fmt.Errorf("%w: %s holds %d %s, needs %d", ErrInsufficientFunds, mv.From, bal, mv.Token, mv.Amount)
		}
		staged[from] = bal - mv.Amount
		credit := get(to)
		if credit > math.MaxInt64-mv.Amount {
			return fmt.Errorf("%w: credit would overflow %s balance", ErrInvalidMove, mv.To)
		}
		staged[to] = credit + mv.Amount
	}
	holders := map[AssetID]Account{}
	for _, c := range b.Custody {
		holder, ok := holders[c.Asset]
		if !ok {
			holder, ok = m.assets[c.Asset]
		}
		if !ok || holder != c.From {
			return fmt.Errorf("%w: %s is not held by %s", ErrAssetNotHeld, c.Asset, c.From)
		}
		holders[c.Asset] = c.To
	}

	for k, v := range staged {
		m.balances[k] = v
	}
	for asset, holder := range holders {
		m.assets[asset] = holder
	}
	for _, mv := range b.Moves {
		m.record(Entry{Token: mv.Token, Account: mv.From, Amount: -mv.Amount, Kind: mv.Kind, RefType: b.RefType, RefID: b.RefID})
		m.record(Entry{Token: mv.Token, Account: mv.To, Amount: mv.Amount, Kind: mv.Kind, RefType: b.RefType, RefID: b.RefID})
	}
	return nil
}

func (m *Memory) record(e Entry) {
	m.seq++
	e.Seq = m.seq
	m.journal = append(m.journal, e)
}

// MemorySnapshot captures ledger state for Restore.
type MemorySnapshot struct {
	balances map[balanceKey]int64
	assets   map[AssetID]Account
	journal  int
	seq      int64
}

func (m *Memory) Snapshot() MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MemorySnapshot{
		balances: make(map[balanceKey]int64, len(m.balances)),
		assets:   make(map[AssetID]Account, len(m.assets)),
		journal:  len(m.journal),
		seq:      m.seq,
	}
	for k, v := range m.balances {
		snap.balances[k] = v
	}
	for k, v := range m.assets {
		snap.assets[k] = v
	}
	return snap
}

// Restore rolls the ledger back to snap. A snapshot can be restored once.
func (m *Memory) Restore(snap MemorySnapshot) error {
	if snap.balances == nil {
		return errors.New("escrow: empty snapshot")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.journal > len(m.journal) {
		return errors.New("escrow: snapshot is newer than the journal")
	}
	m.balances = snap.balances
	m.assets = snap.assets
	m.journal = m.journal[:snap.journal]
	m.seq = snap.seq
	return nil
}

// EntryFilter narrows a journal listing. Empty fields match everything.
type EntryFilter struct {
	Account Account
	RefType string
	RefID   string
}

func (f EntryFilter) Match(e Entry) bool {
	return (f.Account == "" || e.Account == f.Account) &&
		(f.RefType == "" || e.RefType == f.RefType) &&
		(f.RefID == "" || e.RefID == f.RefID)
}

// Entries lists matching journal lines, newest first.
func (m *Memory) Entries(f EntryFilter, limit, offset int) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Entry{}
	skipped := 0
	for i := len(m.journal) - 1; i >= 0 && len(out) < limit; i-- {
		if !f.Match(m.journal[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, m.journal[i])
	}
	return out
}
