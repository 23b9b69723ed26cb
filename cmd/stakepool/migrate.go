package main

import (
	"context"

	"stakepool/internal/config"
	"stakepool/internal/store"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run() error {
	cfg, err := config.LoadApp("")
	if err != nil {
		return err
	}
	if err := cfg.RequirePostgres(); err != nil {
		return err
	}
	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Migrate(context.Background())
}
