package escrow

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrAssetNotHeld      = errors.New("asset_not_held")
	ErrInvalidMove       = errors.New("invalid_move")
)
