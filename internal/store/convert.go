package store

import (
	"errors"

	"stakepool/internal/escrow"

	"github.com/jackc/pgx/v5"
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func int32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func ints(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func assetIDs(in []string) []escrow.AssetID {
	if len(in) == 0 {
		return nil
	}
	out := make([]escrow.AssetID, len(in))
	for i, v := range in {
		out[i] = escrow.AssetID(v)
	}
	return out
}

func assetStrings(in []escrow.AssetID) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
