package main

import (
	"io"
	"os"

	"stakepool/internal/config"
	"stakepool/internal/logging"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" default:"1" help:"Run the settlement HTTP server"`
	Migrate MigrateCmd       `cmd:"" help:"Apply the embedded Postgres schema"`
	Payouts PayoutsCmd       `cmd:"" help:"Print the payout split for a field size"`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("dotenv_load_failed")
	}
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("stakepool"),
		kong.Description("Escrow settlement for cash games and tournaments"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
