package leagues

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the persistence seam the matchday simulator drives.
type Repository interface {
	ActiveSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error)
	CreateSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error)

	LoadOrCreateProgress(ctx context.Context, tx pgx.Tx, seasonID string) (*SeasonProgress, error)
	AdvanceMatchday(ctx context.Context, tx pgx.Tx, seasonID string, nextMatchday int) error
	CompleteSeason(ctx context.Context, tx pgx.Tx, seasonID string) error

	ClubsForTier(ctx context.Context, tx pgx.Tx, tier Tier) ([]Club, error)
	FixturesForMatchday(ctx context.Context, tx pgx.Tx, seasonID string, matchday int) ([]Fixture, error)
	FixturesForSeason(ctx context.Context, tx pgx.Tx, seasonID string) ([]Fixture, error)
	InsertFixtures(ctx context.Context, tx pgx.Tx, seasonID string, tier Tier, matchday int, pairings []Pairing) error
	WriteFixtureResult(ctx context.Context, tx pgx.Tx, fixtureID string, homeGoals, awayGoals int) error

	TeamSeasonsForSeason(ctx context.Context, tx pgx.Tx, seasonID string) (map[string]*TeamSeason, error)
	EnsureTeamSeason(ctx context.Context, tx pgx.Tx, seasonID, clubID, clubName string) (*TeamSeason, error)
	WriteTeamSeason(ctx context.Context, tx pgx.Tx, ts *TeamSeason) error
}
