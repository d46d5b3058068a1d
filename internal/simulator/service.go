package simulator

import (
	"context"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/leagues"
)

// Transactor is the slice of dbx.Pool the simulator needs, narrowed so
// tests can run against leagues.MemoryRepository without a database.
type Transactor interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

var allTiers = []leagues.Tier{leagues.Championship, leagues.LeagueOne, leagues.LeagueTwo}

type Config struct {
	GoalModel      GoalModel
	RetryMax       int
	RetryBase      time.Duration
	WriteThrottle  time.Duration
}

func DefaultConfig(lambdaHome, lambdaAway float64) Config {
	return Config{
		GoalModel:     NewPoissonGoalModel(lambdaHome, lambdaAway),
		RetryMax:      3,
		RetryBase:     500 * time.Millisecond,
		WriteThrottle: 100 * time.Millisecond,
	}
}

type Service struct {
	db   Transactor
	repo leagues.Repository
	cfg  Config
	log  *slog.Logger
	rng  *mathrand.Rand
}

func NewService(db Transactor, repo leagues.Repository, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:   db,
		repo: repo,
		cfg:  cfg,
		log:  logger,
		rng:  mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// SimulateDay advances all three tiers independently, per spec.md §4.5.
// One tier's abort never prevents the others from progressing.
func (s *Service) SimulateDay(ctx context.Context) (SimulateDayResult, error) {
	result := SimulateDayResult{}
	for _, tier := range allTiers {
		r := s.simulateTier(ctx, tier)
		result.Tiers = append(result.Tiers, r)
		s.log.Info("matchday simulated", "tier", tier, "outcome", r.Outcome, "matchday", r.Matchday, "reason", r.Reason)
	}
	return result, nil
}

func (s *Service) simulateTier(ctx context.Context, tier leagues.Tier) TierResult {
	season, progress, outcome := s.loadOrCreateSeason(ctx, tier)
	if outcome != nil {
		return *outcome
	}

	matchday := progress.CurrentMatchday
	if matchday > season.TotalMatchdays {
		if err := s.completeSeason(ctx, season.ID); err != nil {
			return errorResult(tier, "completing season", err)
		}
		return TierResult{Tier: string(tier), Outcome: OutcomeSkipped, Matchday: matchday, Reason: "season completed, nothing to simulate this tier"}
	}

	clubs, err := s.loadClubs(ctx, tier)
	if err != nil {
		return errorResult(tier, "loading clubs", err)
	}

	fixtures, err := s.fetchOrGenerateFixtures(ctx, season, matchday, clubs)
	if err != nil {
		return errorResult(tier, "loading fixtures", err)
	}

	upcoming, played := classify(fixtures)

	if len(played) == leagues.FixturesPerMatchday && len(upcoming) == 0 {
		if err := s.advanceCounters(ctx, season.ID, matchday+1); err != nil {
			return errorResult(tier, "advancing after already-played matchday", err)
		}
		return TierResult{Tier: string(tier), Outcome: OutcomeAlreadyPlayed, Matchday: matchday}
	}

	if len(upcoming) != leagues.FixturesPerMatchday {
		return TierResult{Tier: string(tier), Outcome: OutcomeAborted, Matchday: matchday,
			Reason: "expected exactly 12 upcoming fixtures"}
	}

	if err := s.simulateAndWrite(ctx, upcoming); err != nil {
		return TierResult{Tier: string(tier), Outcome: OutcomeAborted, Matchday: matchday, Reason: err.Error()}
	}

	var verified []leagues.Fixture
	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		verified, err = s.repo.FixturesForMatchday(ctx, tx, season.ID, matchday)
		return err
	})
	if err != nil {
		return errorResult(tier, "post-write verification", err)
	}
	playedCount := 0
	for _, f := range verified {
		if f.IsPlayed() {
			playedCount++
		}
	}
	if playedCount < leagues.FixturesPerMatchday {
		return TierResult{Tier: string(tier), Outcome: OutcomeAborted, Matchday: matchday,
			Reason: "fewer than 12 fixtures confirmed played after write"}
	}

	if err := s.writeStandings(ctx, season, verified, clubNames(clubs)); err != nil {
		return TierResult{Tier: string(tier), Outcome: OutcomeAborted, Matchday: matchday, Reason: err.Error()}
	}

	if err := s.advanceCounters(ctx, season.ID, matchday+1); err != nil {
		return errorResult(tier, "advancing counters", err)
	}

	return TierResult{Tier: string(tier), Outcome: OutcomeOK, Matchday: matchday}
}

func (s *Service) loadOrCreateSeason(ctx context.Context, tier leagues.Tier) (*leagues.Season, *leagues.SeasonProgress, *TierResult) {
	var season *leagues.Season
	var progress *leagues.SeasonProgress
	var created bool

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.repo.ActiveSeason(ctx, tx, tier)
		if err != nil {
			return err
		}
		if existing == nil {
			existing, err = s.repo.CreateSeason(ctx, tx, tier)
			if err != nil {
				return err
			}
			created = true
		}
		season = existing

		p, err := s.repo.LoadOrCreateProgress(ctx, tx, season.ID)
		if err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		r := errorResult(tier, "loading season/progress", err)
		return nil, nil, &r
	}
	if created {
		r := TierResult{Tier: string(tier), Outcome: OutcomeOK, Matchday: 1, NewSeasonCreated: true}
		return season, progress, &r
	}
	return season, progress, nil
}

func (s *Service) loadClubs(ctx context.Context, tier leagues.Tier) ([]leagues.Club, error) {
	var clubs []leagues.Club
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		clubs, err = s.repo.ClubsForTier(ctx, tx, tier)
		return err
	})
	return clubs, err
}

func clubNames(clubs []leagues.Club) map[string]string {
	names := make(map[string]string, len(clubs))
	for _, c := range clubs {
		names[c.ID] = c.Name
	}
	return names
}

func clubIDsOf(clubs []leagues.Club) []string {
	ids := make([]string, len(clubs))
	for i, c := range clubs {
		ids[i] = c.ID
	}
	return ids
}

func (s *Service) fetchOrGenerateFixtures(ctx context.Context, season *leagues.Season, matchday int, clubs []leagues.Club) ([]leagues.Fixture, error) {
	var fixtures []leagues.Fixture
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.repo.FixturesForMatchday(ctx, tx, season.ID, matchday)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			fixtures = existing
			return nil
		}

		schedule, err := leagues.GenerateSchedule(clubIDsOf(clubs))
		if err != nil {
			return err
		}
		if matchday < 1 || matchday > len(schedule) {
			return fmt.Errorf("matchday %d out of range for a %d-matchday season", matchday, len(schedule))
		}

		if err := withThrottledRetry(ctx, s.cfg, func() error {
			return s.repo.InsertFixtures(ctx, tx, season.ID, season.Tier, matchday, schedule[matchday-1])
		}); err != nil {
			return err
		}

		fixtures, err = s.repo.FixturesForMatchday(ctx, tx, season.ID, matchday)
		return err
	})
	return fixtures, err
}

func (s *Service) simulateAndWrite(ctx context.Context, upcoming []leagues.Fixture) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for i, f := range upcoming {
			home, away := s.cfg.GoalModel.Goals(s.rng)
			if err := withThrottledRetry(ctx, s.cfg, func() error {
				return s.repo.WriteFixtureResult(ctx, tx, f.ID, home, away)
			}); err != nil {
				return err
			}
			if i < len(upcoming)-1 {
				if err := throttle(ctx, s.cfg.WriteThrottle); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Service) writeStandings(ctx context.Context, season *leagues.Season, fixtures []leagues.Fixture, names map[string]string) error {
	deltas := leagues.DeltasFromResults(fixtures)
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for clubID, delta := range deltas {
			name := names[clubID]
			if name == "" {
				name = clubID
			}
			ts, err := s.repo.EnsureTeamSeason(ctx, tx, season.ID, clubID, name)
			if err != nil {
				return err
			}
			leagues.ApplyDelta(ts, delta)
			if err := withThrottledRetry(ctx, s.cfg, func() error {
				return s.repo.WriteTeamSeason(ctx, tx, ts)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) advanceCounters(ctx context.Context, seasonID string, next int) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.repo.AdvanceMatchday(ctx, tx, seasonID, next)
	})
}

func (s *Service) completeSeason(ctx context.Context, seasonID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.repo.CompleteSeason(ctx, tx, seasonID)
	})
}

func withThrottledRetry(ctx context.Context, cfg Config, fn func() error) error {
	return withRetry(ctx, cfg.RetryMax, cfg.RetryBase, fn)
}

func classify(fixtures []leagues.Fixture) (upcoming, played []leagues.Fixture) {
	for _, f := range fixtures {
		if f.IsUpcoming() {
			upcoming = append(upcoming, f)
		} else if f.IsPlayed() {
			played = append(played, f)
		}
	}
	return upcoming, played
}

func errorResult(tier leagues.Tier, reason string, err error) TierResult {
	return TierResult{Tier: string(tier), Outcome: OutcomeError, Reason: reason + ": " + err.Error()}
}
