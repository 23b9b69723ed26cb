package main

import (
	"context"
	"fmt"

	"stakepool/internal/app/settlement"
	"stakepool/internal/config"
	"stakepool/internal/memstore"
	"stakepool/internal/payout"
	"stakepool/internal/store"
	httptransport "stakepool/internal/transport/http"

	"github.com/rs/zerolog/log"
)

type backend struct {
	store  settlement.Store
	health httptransport.HealthChecker
	close  func()
}

func openBackend(ctx context.Context, cfg config.ServerConfig) (*backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		st := memstore.New()
		log.Warn().Msg("memory_store_in_use")
		return &backend{store: st, health: st, close: func() {}}, nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("store init: %w", err)
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	return &backend{store: st, health: st, close: st.Close}, nil
}

func loadPayoutTable(path string) (*payout.Table, error) {
	if path == "" {
		return payout.Default(), nil
	}
	table, err := payout.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Ints("tiers", table.Thresholds()).Msg("payout_table_loaded")
	return table, nil
}
