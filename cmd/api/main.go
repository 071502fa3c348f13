package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dwello-backend/bootstrap"
	"dwello-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	setupLogger(cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	rt, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	rt.Start(ctx)

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("API listening")
		errCh <- rt.App.Listen(":" + cfg.Port)
	}()
	go func() {
		log.Info().Str("addr", rt.Realtime.Addr).Msg("realtime listening")
		if err := rt.Realtime.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("listener failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.App.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("api shutdown")
	}
	if err := rt.Realtime.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("realtime shutdown")
	}
	stop()
	rt.Close()
}
