package settlement

import (
	"context"
	"strings"

	"stakepool/internal/engine"
	"stakepool/internal/escrow"

	"github.com/google/uuid"
)

// Payouts previews the table split for a field size, with amounts when pool > 0.
func (s *Service) Payouts(players int, pool int64) (*PayoutSplitResponse, error) {
	if players <= 0 || pool < 0 {
		return nil, ErrInvalidRequest
	}
	split := s.payouts.Select(players)
	out := &PayoutSplitResponse{Players: players, Payouts: split, Pool: pool}
	if pool > 0 {
		out.Amounts = make([]int64, len(split))
		for i, p := range split {
			out.Amounts[i] = engine.PrizeAmount(pool, p)
		}
	}
	return out, nil
}

// TopUp credits a wallet from outside the system.
func (s *Service) TopUp(ctx context.Context, in TopUpInput) (*BalanceResponse, error) {
	addr := address(in.Address)
	token := escrow.Token(strings.TrimSpace(in.Token))
	if addr == "" || token == "" || in.Amount <= 0 {
		return nil, ErrInvalidRequest
	}
	if err := s.store.Mint(ctx, token, escrow.Wallet(addr), in.Amount); err != nil {
		s.observe("top_up", string(addr), "", err)
		return nil, err
	}
	s.observe("top_up", string(addr), "", nil)
	return s.Balance(ctx, string(addr), string(token))
}

func (s *Service) Balance(ctx context.Context, addr, token string) (*BalanceResponse, error) {
	a, tk := address(addr), strings.TrimSpace(token)
	if a == "" || tk == "" {
		return nil, ErrInvalidRequest
	}
	bal, err := s.store.Balance(ctx, escrow.Token(tk), escrow.Wallet(a))
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{Address: string(a), Token: tk, Balance: bal}, nil
}

// IssueAsset mints a fresh non-fungible asset reference held by owner.
func (s *Service) IssueAsset(ctx context.Context, in IssueAssetInput) (*AssetResponse, error) {
	owner := address(in.Owner)
	if owner == "" {
		return nil, ErrInvalidRequest
	}
	asset := escrow.AssetID(uuid.NewString())
	err := s.store.IssueAsset(ctx, asset, escrow.Wallet(owner))
	s.observe("issue_asset", string(asset), "", err)
	if err != nil {
		return nil, err
	}
	return &AssetResponse{Asset: string(asset), Holder: string(escrow.Wallet(owner))}, nil
}

func (s *Service) Asset(ctx context.Context, asset string) (*AssetResponse, error) {
	holder, err := s.store.AssetHolder(ctx, escrow.AssetID(asset))
	if err != nil {
		return nil, mapNotFound(err, ErrAssetNotFound)
	}
	return &AssetResponse{Asset: asset, Holder: string(holder)}, nil
}

func (s *Service) Ledger(ctx context.Context, f escrow.EntryFilter, limit, offset int) (*LedgerResponse, error) {
	entries, err := s.store.ListEntries(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]LedgerEntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LedgerEntryItem{
			Seq:     e.Seq,
			Token:   string(e.Token),
			Account: string(e.Account),
			Amount:  e.Amount,
			Kind:    e.Kind,
			RefType: e.RefType,
			RefID:   e.RefID,
		})
	}
	return &LedgerResponse{Items: items, Limit: limit, Offset: offset}, nil
}
