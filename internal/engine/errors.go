package engine

import (
	"errors"
	"fmt"

	"stakepool/internal/escrow"
)

var (
	ErrInvalidConfig      = errors.New("invalid_config")
	ErrTableFull          = errors.New("table_full")
	ErrRegistrationClosed = errors.New("registration_closed")
	ErrDuplicatePlayer    = errors.New("duplicate_player")
	ErrAlreadyRegistered  = errors.New("already_registered")
	ErrPlayerNotFound     = errors.New("player_not_found")
	ErrPlayerNotActive    = errors.New("player_not_active")
	ErrNotRegistered      = errors.New("not_registered")
	ErrDepositOutOfRange  = errors.New("deposit_out_of_range")
	ErrInsufficientEscrow = errors.New("insufficient_escrow")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyStarted     = errors.New("already_started")
	ErrGameNotEmpty       = errors.New("game_not_empty")
	ErrTournamentNotEmpty = errors.New("tournament_not_empty")
	ErrLengthMismatch     = errors.New("length_mismatch")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidPlace       = errors.New("invalid_place")
	ErrDuplicatePrize     = errors.New("duplicate_prize")
	ErrTournamentClosed   = errors.New("tournament_closed")

	// Ledger failures surface unchanged.
	ErrInsufficientFunds = escrow.ErrInsufficientFunds
	ErrAssetNotHeld      = escrow.ErrAssetNotHeld
)

// OpError reports which operation failed against which entity.
type OpError struct {
	Op       string
	EntityID string
	Err      error
	Detail   string
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.EntityID != "" {
		msg += " " + e.EntityID
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op, id string, err error, format string, args ...any) error {
	oe := &OpError{Op: op, EntityID: id, Err: err}
	if format != "" {
		oe.Detail = fmt.Sprintf(format, args...)
	}
	return oe
}

// Kinds lists every failure the engine reports, for callers mapping errors to codes.
var Kinds = []error{
	ErrInvalidConfig, ErrTableFull, ErrRegistrationClosed, ErrDuplicatePlayer,
	ErrAlreadyRegistered, ErrPlayerNotFound, ErrPlayerNotActive, ErrNotRegistered,
	ErrDepositOutOfRange, ErrInsufficientFunds, ErrInsufficientEscrow, ErrUnauthorized,
	ErrAlreadyStarted, ErrGameNotEmpty, ErrTournamentNotEmpty, ErrLengthMismatch,
	ErrInvalidAmount, ErrInvalidPlace, ErrDuplicatePrize, ErrTournamentClosed, ErrAssetNotHeld,
}

// Kind returns the sentinel err wraps, or nil when it is not an engine failure.
func Kind(err error) error {
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
