package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/careers"
	"footybrain/internal/config"
	"footybrain/internal/dbx"
	"footybrain/internal/groups"
	"footybrain/internal/httpapi"
	"footybrain/internal/leaderboard"
	"footybrain/internal/leagues"
	"footybrain/internal/simulator"
	"footybrain/internal/squads"
	"footybrain/internal/sweep"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := dbx.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.EnsureSweepState(ctx); err != nil {
		logger.Error("sweep state init failed", "err", err)
		os.Exit(1)
	}

	careersRepo := careers.NewPgxRepository()
	careersSvc := careers.NewService(pool, careersRepo)

	sweepRepo := sweep.NewPgxRepository(pool.Pool)
	sweepEngine := sweep.NewEngine(pool, sweepRepo, careersSvc, dbx.AdvisoryLock, cfg.SweepAdvisoryLockKey, logger)

	leaguesRepo := leagues.NewPgxRepository()
	if err := pool.WithTx(ctx, func(tx pgx.Tx) error { return leaguesRepo.SeedDefaultClubs(ctx, tx) }); err != nil {
		logger.Error("club roster seed failed", "err", err)
		os.Exit(1)
	}
	simCfg := simulator.DefaultConfig(cfg.MatchdayLambdaHome, cfg.MatchdayLambdaAway)
	simCfg.RetryMax = cfg.MatchdayRetryMax
	simCfg.RetryBase = cfg.MatchdayRetryBase
	simulatorSvc := simulator.NewService(pool, leaguesRepo, simCfg, logger)

	squadsSvc := squads.NewService(pool, squads.NewPgxRepository())
	groupsSvc := groups.NewService(pool, groups.NewPgxRepository())
	leaderboardSvc := leaderboard.NewService(pool, leaderboard.NewPgxRepository())

	apiCfg := httpapi.Config{
		AuthJWTSecret:   cfg.AuthJWTSecret,
		BrainHMACSecret: cfg.BrainHMACSecret,
		CronSecret:      cfg.CronSecret,
	}
	server := httpapi.New(apiCfg, logger, pool, careersSvc, sweepEngine, simulatorSvc, squadsSvc, groupsSvc, leaderboardSvc)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("footybrain api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
