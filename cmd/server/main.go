package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cipriano/internal/config"
	"cipriano/internal/infra"
	"cipriano/internal/middleware"
	"cipriano/internal/repository"
	"cipriano/internal/router"
	"cipriano/internal/service"
	"cipriano/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// dev: pretty console, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			log.Fatal().Msg("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-only-secret"
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLockTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authSvc := service.NewAuthService(repository.NewOperadorRepository(db), cfg)
	if err := authSvc.BootstrapOperadores(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap operators")
	}

	deps := router.Deps{DB: db, Auth: authSvc}

	// Redis only backs the label queue; the scan flow runs without it.
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, label jobs disabled")
	} else {
		mailer := infra.NewMailer(cfg)
		mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
		dispatcher := worker.NewDispatcher(rdb)

		emailTo := cfg.LabelsEmailTo
		if !mailer.Configured() {
			emailTo = ""
		}
		etiquetas := worker.NewEtiquetasWorker(repository.NewPizzaRepository(db), dispatcher, cfg.LabelsStoragePath, emailTo)
		emails := worker.NewEmailWorker(mailer, mailCB)
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
			worker.QueueEtiquetas: etiquetas.Process,
			worker.QueueEmail:     emails.Process,
		})

		deps.Redis, deps.Dispatcher, deps.MailCB = rdb, dispatcher, mailCB
	}

	middleware.StartLimiterPurge(ctx)

	r := router.New(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cipriano listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
