package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	apihttp "github.com/divyarao54/Issue-Tracking-System/internal/http"
	"github.com/divyarao54/Issue-Tracking-System/internal/jobs"
	"github.com/divyarao54/Issue-Tracking-System/internal/logger"
	"github.com/divyarao54/Issue-Tracking-System/internal/repo"
	"github.com/divyarao54/Issue-Tracking-System/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db := repo.MustOpen(ctx, cfg, log)
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// Services
	repository := repo.NewRepository(db, log)
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		log.Fatal().Err(err).Int64("node_id", cfg.NodeID).Msg("snowflake node init failed")
	}
	svc := services.NewService(cfg, log, repository, node)

	// HTTP server (Gin)
	router := apihttp.NewRouter(cfg, log, svc)

	// Cron
	cr := jobs.NewCron(cfg, log, repository)
	cr.Start()
	defer cr.Stop()

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	time.Sleep(500 * time.Millisecond)
}
