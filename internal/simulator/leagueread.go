package simulator

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/leagues"
)

// TierStatus is one tier's row in a ResetSync/Status report.
type TierStatus struct {
	Tier             string `json:"efl_tier"`
	SeasonID         string `json:"season_id,omitempty"`
	CurrentMatchday  int    `json:"current_matchday"`
	TotalMatchdays   int    `json:"total_matchdays"`
	Status           string `json:"status,omitempty"`
	NewSeasonCreated bool   `json:"new_season_created"`
}

// ResetSync ensures an active season and a progress cursor exist for
// every tier, without simulating a matchday — the bootstrap operation
// behind a fresh deploy or a wiped database, called once before the
// first simulate-day and safe to call again any time after: an already
// -active tier is left untouched.
func (s *Service) ResetSync(ctx context.Context) ([]TierStatus, error) {
	var out []TierStatus
	for _, tier := range allTiers {
		season, progress, outcome := s.loadOrCreateSeason(ctx, tier)
		if outcome != nil && outcome.Outcome == OutcomeError {
			return nil, tierErr(tier, outcome.Reason)
		}
		out = append(out, TierStatus{
			Tier:             string(tier),
			SeasonID:         season.ID,
			CurrentMatchday:  progress.CurrentMatchday,
			TotalMatchdays:   season.TotalMatchdays,
			Status:           string(season.Status),
			NewSeasonCreated: outcome != nil && outcome.NewSeasonCreated,
		})
	}
	return out, nil
}

// Status reports the current season/progress for every tier. It creates
// no season (a tier without one reports an empty row); for an active
// season that lacks a progress cursor, one is created at matchday 1.
func (s *Service) Status(ctx context.Context) ([]TierStatus, error) {
	var out []TierStatus
	for _, tier := range allTiers {
		var season *leagues.Season
		var progress *leagues.SeasonProgress
		err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
			var err error
			season, err = s.repo.ActiveSeason(ctx, tx, tier)
			if err != nil || season == nil {
				return err
			}
			progress, err = s.repo.LoadOrCreateProgress(ctx, tx, season.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		st := TierStatus{Tier: string(tier)}
		if season != nil {
			st.SeasonID = season.ID
			st.TotalMatchdays = season.TotalMatchdays
			st.Status = string(season.Status)
			st.CurrentMatchday = progress.CurrentMatchday
		}
		out = append(out, st)
	}
	return out, nil
}

// Table returns the current standings for a tier's active season,
// sorted per spec.md §4.6 (points, goal difference, goals for, name).
func (s *Service) Table(ctx context.Context, tier leagues.Tier) ([]leagues.TeamSeason, error) {
	var rows []leagues.TeamSeason
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		season, err := s.repo.ActiveSeason(ctx, tx, tier)
		if err != nil {
			return err
		}
		if season == nil {
			return nil
		}
		teamSeasons, err := s.repo.TeamSeasonsForSeason(ctx, tx, season.ID)
		if err != nil {
			return err
		}
		for _, ts := range teamSeasons {
			rows = append(rows, *ts)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	leagues.SortStandings(rows)
	return rows, nil
}

// Fixtures returns a tier's upcoming fixtures, optionally scoped to one
// matchday.
func (s *Service) Fixtures(ctx context.Context, tier leagues.Tier, matchday *int) ([]leagues.Fixture, error) {
	return s.fixturesByStatus(ctx, tier, matchday, false)
}

// Results returns a tier's played fixtures, optionally scoped to one
// matchday.
func (s *Service) Results(ctx context.Context, tier leagues.Tier, matchday *int) ([]leagues.Fixture, error) {
	return s.fixturesByStatus(ctx, tier, matchday, true)
}

func (s *Service) fixturesByStatus(ctx context.Context, tier leagues.Tier, matchday *int, played bool) ([]leagues.Fixture, error) {
	var all []leagues.Fixture
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		season, err := s.repo.ActiveSeason(ctx, tx, tier)
		if err != nil {
			return err
		}
		if season == nil {
			return nil
		}
		if matchday != nil {
			all, err = s.repo.FixturesForMatchday(ctx, tx, season.ID, *matchday)
		} else {
			all, err = s.repo.FixturesForSeason(ctx, tx, season.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []leagues.Fixture
	for _, f := range all {
		if f.IsPlayed() == played {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Matchday < out[j].Matchday })
	return out, nil
}

func tierErr(tier leagues.Tier, reason string) error {
	return &tierError{tier: string(tier), reason: reason}
}

type tierError struct {
	tier   string
	reason string
}

func (e *tierError) Error() string { return e.tier + ": " + e.reason }
