package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stakepool/internal/app/settlement"
	"stakepool/internal/config"
	httptransport "stakepool/internal/transport/http"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overrides HTTP_ADDR"`
}

func (c *ServeCmd) Run() error {
	app, err := config.LoadApp(c.Addr)
	if err != nil {
		return err
	}
	cfg := app.Server
	if !app.AdminEnabled() {
		log.Warn().Msg("admin_api_disabled")
	}
	table, err := loadPayoutTable(cfg.PayoutTablePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	svc := settlement.NewService(be.store, table, quartz.NewReal())
	r := httptransport.NewRouter(svc, be.health, cfg)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Str("log_level", app.Log.Level).Msg("http_listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("http_shutting_down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("http_stopped")
	return nil
}
