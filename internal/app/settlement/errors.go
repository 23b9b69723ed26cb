package settlement

import "errors"

var (
	// ErrNotFound is what Store and Repository return for a missing record.
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrCashGameNotFound   = errors.New("cash_game_not_found")
	ErrTournamentNotFound = errors.New("tournament_not_found")
	ErrAssetNotFound      = errors.New("asset_not_found")
)
