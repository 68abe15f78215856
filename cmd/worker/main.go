package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/config"
	"pubops-backend/pkg/container"
	"pubops-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Cleanup()

	srv := newWorkerServer(cfg)
	mux := newHandlerRegistry(c).Mux()

	if err := srv.Start(mux); err != nil {
		log.Error().Err(err).Msg("worker failed to start")
		return
	}
	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("worker shutting down")
	srv.Shutdown()
	log.Info().Msg("worker stopped")
}
