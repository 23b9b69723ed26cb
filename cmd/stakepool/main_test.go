package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"stakepool/internal/config"

	"github.com/stretchr/testify/require"
)

func TestPayoutsCmdPrintsAmounts(t *testing.T) {
	var out bytes.Buffer
	cmd := &PayoutsCmd{Players: 6, Pool: 2050}
	require.NoError(t, cmd.Run(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, []string{"1", "700", "1435"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"2", "300", "615"}, strings.Fields(lines[2]))
}

func TestPayoutsCmdSharesOnly(t *testing.T) {
	var out bytes.Buffer
	cmd := &PayoutsCmd{Players: 2}
	require.NoError(t, cmd.Run(&out))
	require.Equal(t, []string{"PLACE", "PERMILLE", "1", "1000"}, strings.Fields(out.String()))
}

func TestPayoutsCmdRejectsEmptyField(t *testing.T) {
	require.Error(t, (&PayoutsCmd{}).Run(&bytes.Buffer{}))
}

func TestLoadPayoutTableFromFile(t *testing.T) {
	table, err := loadPayoutTable("../../internal/payout/testdata/percent.hcl")
	require.NoError(t, err)
	require.Equal(t, []int{650, 350}, table.Select(9))
}

func TestOpenBackendMemory(t *testing.T) {
	be, err := openBackend(context.Background(), config.ServerConfig{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer be.close()
	require.NoError(t, be.health.Ping(context.Background()))
	require.NotEmpty(t, be.store.NewID())
}
