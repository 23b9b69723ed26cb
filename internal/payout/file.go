package payout

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type fileConfig struct {
	Unit  string      `hcl:"unit,optional"`
	Tiers []tierBlock `hcl:"tier,block"`
}

type tierBlock struct {
	MaxPlayers int       `hcl:"max_players"`
	Payouts    []float64 `hcl:"payouts"`
}

// LoadFile reads a payout table written in HCL:
//
//	unit = "permille"
//	tier {
//	  max_players = 10
//	  payouts     = [700, 300]
//	}
func LoadFile(path string) (*Table, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse payout table %s: %s", path, diags.Error())
	}
	var cfg fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode payout table %s: %s", path, diags.Error())
	}
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, Tier{MaxPlayers: t.MaxPlayers, Payouts: t.Payouts})
	}
	return New(Unit(cfg.Unit), tiers)
}
