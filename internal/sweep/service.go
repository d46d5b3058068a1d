package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/careers"
)

// Transactor is the slice of dbx.Pool the sweep needs, narrowed so tests
// can run against MemoryRepository without a database.
type Transactor interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// CareerCompleter is the slice of careers.Service the sweep needs —
// narrowed to an interface so tests can stub completion outcomes.
type CareerCompleter interface {
	CompletePlayerCareer(ctx context.Context, tx pgx.Tx, playerID string) (*careers.CompletionResult, error)
}

// AdvisoryLocker takes the session-scoped advisory lock guarding Phase 1.
// Production wiring passes dbx.AdvisoryLock; tests pass a no-op since
// MemoryRepository has no real transaction to lock against.
type AdvisoryLocker func(ctx context.Context, tx pgx.Tx, key int64) error

type Engine struct {
	db        Transactor
	repo      Repository
	completer CareerCompleter
	lock      AdvisoryLocker
	lockKey   int64
	log       *slog.Logger
}

func NewEngine(db Transactor, repo Repository, completer CareerCompleter, lock AdvisoryLocker, lockKey int64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, repo: repo, completer: completer, lock: lock, lockKey: lockKey, log: logger}
}

// Run executes the sweep. Phase 1 (advisory lock + SweepState read-decide-
// write) happens inside a single transaction; phases 2-5 run outside it,
// exactly as spec.md §4.4 requires, so the lock is held only as long as
// the scheduling decision takes.
func (e *Engine) Run(ctx context.Context, force bool) (Result, error) {
	today := UTCDay(time.Now())

	proceed, err := e.gateOnSchedule(ctx, force, today)
	if err != nil {
		return Result{}, err
	}
	if !proceed.shouldRun {
		return Result{AlreadyRanToday: proceed.alreadyRanToday, NotScheduled: proceed.notScheduled}, nil
	}

	players, err := e.repo.LoadActivePlayers(ctx)
	if err != nil {
		return Result{}, err
	}

	var completionTargets []Candidate
	promotionsByLeague := map[careers.League][]Candidate{}
	var skips []Candidate

	for _, p := range players {
		threshold := promotionThreshold(p.CurrentLeague)
		if p.Rating < threshold {
			skips = append(skips, p)
			continue
		}
		if p.CurrentLeague == careers.Championship {
			completionTargets = append(completionTargets, p)
			continue
		}
		promotionsByLeague[p.CurrentLeague] = append(promotionsByLeague[p.CurrentLeague], p)
	}

	result := Result{TotalActive: len(players)}

	for _, c := range completionTargets {
		outcome, err := e.completer.CompletePlayerCareer(ctx, nil, c.PlayerID)
		if err != nil {
			result.Errors = append(result.Errors, PlayerError{PlayerID: c.PlayerID, Err: err.Error()})
			e.log.Warn("sweep completion failed", "player_id", c.PlayerID, "error", err)
			continue
		}
		result.Completions = append(result.Completions, CompletionOutcome{PlayerID: c.PlayerID, AlreadyCompleted: outcome.AlreadyCompleted})
	}

	var allPromotions []Candidate
	for from, candidates := range promotionsByLeague {
		to, ok := nextLeague(from)
		if !ok {
			continue
		}
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.PlayerID
		}
		if err := e.repo.PromoteLeague(ctx, from, to, promotionThreshold(from), ids); err != nil {
			for _, c := range candidates {
				result.Errors = append(result.Errors, PlayerError{PlayerID: c.PlayerID, Err: err.Error()})
			}
			e.log.Warn("sweep promotion batch failed", "from_league", from, "to_league", to, "error", err)
			continue
		}
		allPromotions = append(allPromotions, candidates...)
	}

	result.Promotions = capCandidates(allPromotions)
	result.Skips = capCandidates(skips)

	e.log.Info("sweep complete", "total_active", result.TotalActive, "completions", len(result.Completions),
		"promotions", len(allPromotions), "skips", len(skips), "errors", len(result.Errors))

	return result, nil
}

type scheduleDecision struct {
	shouldRun       bool
	alreadyRanToday bool
	notScheduled    bool
}

func (e *Engine) gateOnSchedule(ctx context.Context, force bool, today int64) (scheduleDecision, error) {
	var decision scheduleDecision
	err := e.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := e.lock(ctx, tx, e.lockKey); err != nil {
			return err
		}
		state, err := e.repo.LockState(ctx, tx)
		if err != nil {
			return err
		}

		if !force && !IsScheduledDay(today) {
			decision.notScheduled = true
			return nil
		}
		if state.LastSweepUTCDay != nil && *state.LastSweepUTCDay == today {
			decision.alreadyRanToday = true
			return nil
		}

		if err := e.repo.StampRun(ctx, tx, today, time.Now()); err != nil {
			return err
		}
		decision.shouldRun = true
		return nil
	})
	return decision, err
}

// Status reads SweepState plus whether today is a scheduled day.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	state, err := e.repo.State(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		LastSweepUTCDay:  state.LastSweepUTCDay,
		LastSweepAt:      state.LastSweepAt,
		RunCount:         state.RunCount,
		TodayIsScheduled: IsScheduledDay(UTCDay(time.Now())),
	}, nil
}
