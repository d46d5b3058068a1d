package leagues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgxRepository struct{}

func NewPgxRepository() *PgxRepository { return &PgxRepository{} }

func (r *PgxRepository) ActiveSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, efl_tier, current_matchday, total_matchdays, fixtures_generated, status, created_at
		FROM seasons WHERE efl_tier = $1 AND status = 'active'
		ORDER BY created_at DESC LIMIT 1
	`, tier)
	s, err := scanSeason(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *PgxRepository) CreateSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO seasons (id, efl_tier, current_matchday, total_matchdays, fixtures_generated, status, created_at)
		VALUES ($1, $2, 1, $3, false, 'active', now())
	`, id, tier, TotalMatchdays)
	if err != nil {
		return nil, err
	}
	return &Season{ID: id, Tier: tier, CurrentMatchday: 1, TotalMatchdays: TotalMatchdays, Status: SeasonActive}, nil
}

func (r *PgxRepository) LoadOrCreateProgress(ctx context.Context, tx pgx.Tx, seasonID string) (*SeasonProgress, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO season_progress (season_id, current_matchday)
		VALUES ($1, 1)
		ON CONFLICT (season_id) DO UPDATE SET season_id = EXCLUDED.season_id
		RETURNING season_id, current_matchday
	`, seasonID)
	var p SeasonProgress
	if err := row.Scan(&p.SeasonID, &p.CurrentMatchday); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxRepository) AdvanceMatchday(ctx context.Context, tx pgx.Tx, seasonID string, nextMatchday int) error {
	if _, err := tx.Exec(ctx, `UPDATE season_progress SET current_matchday = $2 WHERE season_id = $1`, seasonID, nextMatchday); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE seasons SET current_matchday = $2 WHERE id = $1`, seasonID, nextMatchday)
	return err
}

func (r *PgxRepository) CompleteSeason(ctx context.Context, tx pgx.Tx, seasonID string) error {
	_, err := tx.Exec(ctx, `UPDATE seasons SET status = 'completed' WHERE id = $1`, seasonID)
	return err
}

func (r *PgxRepository) ClubsForTier(ctx context.Context, tx pgx.Tx, tier Tier) ([]Club, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, efl_tier FROM clubs WHERE efl_tier = $1 ORDER BY id`, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var clubs []Club
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Tier); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// SeedDefaultClubs inserts the 24-club roster for every tier that doesn't
// already have one, the same insert-or-skip idiom dbx.EnsureSweepState uses
// for the sweep singleton.
func (r *PgxRepository) SeedDefaultClubs(ctx context.Context, tx pgx.Tx) error {
	for _, tier := range []Tier{Championship, LeagueOne, LeagueTwo} {
		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM clubs WHERE efl_tier = $1`, tier).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		for i := 1; i <= ClubsPerTier; i++ {
			id := fmt.Sprintf("%s-club-%02d", tier, i)
			name := fmt.Sprintf("%s FC %d", tierLabel(tier), i)
			if _, err := tx.Exec(ctx, `
				INSERT INTO clubs (id, name, efl_tier) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING
			`, id, name, tier); err != nil {
				return err
			}
		}
	}
	return nil
}

func tierLabel(tier Tier) string {
	switch tier {
	case Championship:
		return "Championship"
	case LeagueOne:
		return "League One"
	case LeagueTwo:
		return "League Two"
	default:
		return string(tier)
	}
}

func (r *PgxRepository) FixturesForMatchday(ctx context.Context, tx pgx.Tx, seasonID string, matchday int) ([]Fixture, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, season_id, efl_tier, matchday, home_club_id, away_club_id, home_goals, away_goals, status, played_at
		FROM fixtures WHERE season_id = $1 AND matchday = $2
	`, seasonID, matchday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fixture
	for rows.Next() {
		var f Fixture
		if err := rows.Scan(&f.ID, &f.SeasonID, &f.Tier, &f.Matchday, &f.HomeClubID, &f.AwayClubID, &f.HomeGoals, &f.AwayGoals, &f.Status, &f.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PgxRepository) FixturesForSeason(ctx context.Context, tx pgx.Tx, seasonID string) ([]Fixture, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, season_id, efl_tier, matchday, home_club_id, away_club_id, home_goals, away_goals, status, played_at
		FROM fixtures WHERE season_id = $1 ORDER BY matchday ASC
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fixture
	for rows.Next() {
		var f Fixture
		if err := rows.Scan(&f.ID, &f.SeasonID, &f.Tier, &f.Matchday, &f.HomeClubID, &f.AwayClubID, &f.HomeGoals, &f.AwayGoals, &f.Status, &f.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PgxRepository) InsertFixtures(ctx context.Context, tx pgx.Tx, seasonID string, tier Tier, matchday int, pairings []Pairing) error {
	for _, p := range pairings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO fixtures (id, season_id, efl_tier, matchday, home_club_id, away_club_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'UPCOMING')
		`, uuid.NewString(), seasonID, tier, matchday, p.Home, p.Away); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgxRepository) WriteFixtureResult(ctx context.Context, tx pgx.Tx, fixtureID string, homeGoals, awayGoals int) error {
	_, err := tx.Exec(ctx, `
		UPDATE fixtures SET home_goals = $2, away_goals = $3, status = 'PLAYED', played_at = now()
		WHERE id = $1
	`, fixtureID, homeGoals, awayGoals)
	return err
}

func (r *PgxRepository) TeamSeasonsForSeason(ctx context.Context, tx pgx.Tx, seasonID string) (map[string]*TeamSeason, error) {
	rows, err := tx.Query(ctx, `
		SELECT season_id, club_id, club_name, played, won, drawn, lost, goals_for, goals_against
		FROM team_seasons WHERE season_id = $1
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]*TeamSeason{}
	for rows.Next() {
		var ts TeamSeason
		if err := rows.Scan(&ts.SeasonID, &ts.ClubID, &ts.ClubName, &ts.Played, &ts.Won, &ts.Drawn, &ts.Lost, &ts.GoalsFor, &ts.GoalsAgainst); err != nil {
			return nil, err
		}
		out[ts.ClubID] = &ts
	}
	return out, rows.Err()
}

func (r *PgxRepository) EnsureTeamSeason(ctx context.Context, tx pgx.Tx, seasonID, clubID, clubName string) (*TeamSeason, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO team_seasons (season_id, club_id, club_name, played, won, drawn, lost, goals_for, goals_against)
		VALUES ($1, $2, $3, 0, 0, 0, 0, 0, 0)
		ON CONFLICT (season_id, club_id) DO UPDATE SET season_id = EXCLUDED.season_id
		RETURNING season_id, club_id, club_name, played, won, drawn, lost, goals_for, goals_against
	`, seasonID, clubID, clubName)
	var ts TeamSeason
	if err := row.Scan(&ts.SeasonID, &ts.ClubID, &ts.ClubName, &ts.Played, &ts.Won, &ts.Drawn, &ts.Lost, &ts.GoalsFor, &ts.GoalsAgainst); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *PgxRepository) WriteTeamSeason(ctx context.Context, tx pgx.Tx, ts *TeamSeason) error {
	_, err := tx.Exec(ctx, `
		UPDATE team_seasons SET played=$3, won=$4, drawn=$5, lost=$6, goals_for=$7, goals_against=$8
		WHERE season_id = $1 AND club_id = $2
	`, ts.SeasonID, ts.ClubID, ts.Played, ts.Won, ts.Drawn, ts.Lost, ts.GoalsFor, ts.GoalsAgainst)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeason(row rowScanner) (*Season, error) {
	var s Season
	err := row.Scan(&s.ID, &s.Tier, &s.CurrentMatchday, &s.TotalMatchdays, &s.FixturesGenerated, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
