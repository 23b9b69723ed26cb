package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"stakepool/internal/engine"
)

type PayoutsCmd struct {
	Players int    `required:"" help:"Number of entrants"`
	Pool    int64  `help:"Prize pool to split; omit to print shares only"`
	Table   string `env:"PAYOUT_TABLE_PATH" help:"HCL payout table file"`
}

func (c *PayoutsCmd) Run(out io.Writer) error {
	if c.Players <= 0 {
		return fmt.Errorf("players must be positive, got %d", c.Players)
	}
	table, err := loadPayoutTable(c.Table)
	if err != nil {
		return err
	}
	split := table.Select(c.Players)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if c.Pool > 0 {
		fmt.Fprintln(tw, "PLACE\tPERMILLE\tAMOUNT")
		for i, p := range split {
			fmt.Fprintf(tw, "%d\t%d\t%d\n", i+1, p, engine.PrizeAmount(c.Pool, p))
		}
	} else {
		fmt.Fprintln(tw, "PLACE\tPERMILLE")
		for i, p := range split {
			fmt.Fprintf(tw, "%d\t%d\n", i+1, p)
		}
	}
	return tw.Flush()
}
