package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/careers"
	"footybrain/internal/config"
	"footybrain/internal/dbx"
	"footybrain/internal/leagues"
	"footybrain/internal/simulator"
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

	careersSvc := careers.NewService(pool, careers.NewPgxRepository())
	sweepEngine := sweep.NewEngine(pool, sweep.NewPgxRepository(pool.Pool), careersSvc, dbx.AdvisoryLock, cfg.SweepAdvisoryLockKey, logger)

	leaguesRepo := leagues.NewPgxRepository()
	if err := pool.WithTx(ctx, func(tx pgx.Tx) error { return leaguesRepo.SeedDefaultClubs(ctx, tx) }); err != nil {
		logger.Error("club roster seed failed", "err", err)
		os.Exit(1)
	}

	simCfg := simulator.DefaultConfig(cfg.MatchdayLambdaHome, cfg.MatchdayLambdaAway)
	simCfg.RetryMax = cfg.MatchdayRetryMax
	simCfg.RetryBase = cfg.MatchdayRetryBase
	simulatorSvc := simulator.NewService(pool, leaguesRepo, simCfg, logger)

	if _, err := simulatorSvc.ResetSync(ctx); err != nil {
		logger.Error("reset-sync failed", "err", err)
		os.Exit(1)
	}

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("BRAIN_WORKER_RUN_ONCE")), "true")
	if runOnce {
		runTick(ctx, logger, sweepEngine, simulatorSvc)
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	logger.Info("worker started", "tick_every", cfg.SweepInterval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			runTick(ctx, logger, sweepEngine, simulatorSvc)
		}
	}
}

// runTick simulates one matchday across all tiers and then runs the
// sweep pass — the sweep's own 4-day gate decides whether it's a no-op.
func runTick(ctx context.Context, logger *slog.Logger, sweepEngine *sweep.Engine, simulatorSvc *simulator.Service) {
	result, err := simulatorSvc.SimulateDay(ctx)
	if err != nil {
		logger.Error("simulate-day failed", "err", err)
	} else {
		logger.Info("simulate-day complete", "tiers", len(result.Tiers))
	}

	sweepResult, err := sweepEngine.Run(ctx, false)
	if err != nil {
		logger.Error("sweep run failed", "err", err)
		return
	}
	logger.Info("sweep tick complete",
		"already_ran_today", sweepResult.AlreadyRanToday,
		"not_scheduled", sweepResult.NotScheduled,
		"total_active", sweepResult.TotalActive,
		"completions", len(sweepResult.Completions),
	)
}
