package engine

import "stakepool/internal/escrow"

// Role is the capability an operation requires of its caller.
type Role int

const (
	RoleParticipant Role = iota + 1
	RoleOwner
)

func authorize(caller, owner escrow.Address, role Role) error {
	if caller == "" {
		return ErrUnauthorized
	}
	switch role {
	case RoleParticipant:
		return nil
	case RoleOwner:
		if caller != owner {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrUnauthorized
	}
}
