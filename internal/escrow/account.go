package escrow

import "strings"

// Address identifies a participant wallet. Signing and key management live outside the engine.
type Address string

// Token names the fungible unit a game or tournament accepts.
type Token string

// AssetID is an opaque non-fungible asset reference.
type AssetID string

// Account is a ledger balance holder: a participant wallet or an entity escrow.
type Account string

const (
	walletPrefix = "wallet:"
	escrowPrefix = "escrow:"
)

func Wallet(a Address) Account {
	return Account(walletPrefix + string(a))
}

// Escrow returns the pooled account of one entity, e.g. Escrow("tournament", id).
func Escrow(kind, id string) Account {
	return Account(escrowPrefix + kind + ":" + id)
}

func (a Account) IsWallet() bool {
	return strings.HasPrefix(string(a), walletPrefix)
}

func (a Account) IsEscrow() bool {
	return strings.HasPrefix(string(a), escrowPrefix)
}

// Address returns the wallet owner, or "" for escrow accounts.
func (a Account) Address() Address {
	if !a.IsWallet() {
		return ""
	}
	return Address(strings.TrimPrefix(string(a), walletPrefix))
}

func (a Account) String() string {
	return string(a)
}
