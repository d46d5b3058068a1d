package careers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// PgxRepository is the production Repository backed by the shared pool,
// grounded on the teacher's upsertBuyPosition/applySellPosition idiom:
// SELECT ... FOR UPDATE, then branch on pgx.ErrNoRows.
type PgxRepository struct{}

func NewPgxRepository() *PgxRepository { return &PgxRepository{} }

func (r *PgxRepository) UpsertPlayer(ctx context.Context, tx pgx.Tx, p *Player) (bool, error) {
	var created bool
	err := tx.QueryRow(ctx, `
		INSERT INTO players (id, user_id, display_name, overall_rating, current_league, career_status, career_started_at)
		VALUES ($1, $2, $3, $4, $5, 'active', now())
		ON CONFLICT (id) DO UPDATE
			SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), players.display_name)
		RETURNING (xmax = 0)
	`, p.ID, p.UserID, p.DisplayName, p.OverallRating, p.CurrentLeague).Scan(&created)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *PgxRepository) UpsertZeroedCoachStats(ctx context.Context, tx pgx.Tx, userID, displayName string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coach_stats (user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, total_days_sum)
		VALUES ($1, $2, 0, NULL, NULL, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, displayName)
	return err
}

func (r *PgxRepository) UpdateProgress(ctx context.Context, tx pgx.Tx, playerID string, rating *int, league *League) (*Player, error) {
	row := tx.QueryRow(ctx, `
		UPDATE players
		SET overall_rating = COALESCE($2, overall_rating),
			current_league = COALESCE($3, current_league),
			updated_at = now()
		WHERE id = $1 AND career_status = 'active'
		RETURNING id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
	`, playerID, rating, league)
	return scanPlayer(row)
}

func (r *PgxRepository) LockPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
		FROM players
		WHERE id = $1
		FOR UPDATE
	`, playerID)
	p, err := scanPlayer(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PgxRepository) GetPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
		FROM players
		WHERE id = $1
	`, playerID)
	p, err := scanPlayer(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PgxRepository) MarkPlayerCompleted(ctx context.Context, tx pgx.Tx, playerID string, completedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE players SET career_status = 'completed', career_completed_at = $2, updated_at = now()
		WHERE id = $1
	`, playerID, completedAt)
	return err
}

func (r *PgxRepository) InsertCompletion(ctx context.Context, tx pgx.Tx, c *CareerCompletion) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO career_completions (id, player_id, user_id, days_to_premier, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO NOTHING
	`, c.ID, c.PlayerID, c.UserID, c.DaysToPremier, c.CompletedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxRepository) UpsertCoachStatsOnCompletion(ctx context.Context, tx pgx.Tx, userID, displayName string, daysToPremier int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coach_stats (user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, total_days_sum)
		VALUES ($1, $2, 1, $3, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			completions_count = coach_stats.completions_count + 1,
			total_days_sum = coach_stats.total_days_sum + $3,
			best_days_to_premier = LEAST(COALESCE(coach_stats.best_days_to_premier, $3), $3),
			avg_days_to_premier = ROUND((coach_stats.total_days_sum + $3)::numeric / (coach_stats.completions_count + 1))
	`, userID, displayName, daysToPremier)
	return err
}

func (r *PgxRepository) ActiveSquadMembership(ctx context.Context, tx pgx.Tx, userID string) (string, bool, error) {
	var squadID string
	err := tx.QueryRow(ctx, `
		SELECT squad_id FROM squad_members WHERE user_id = $1 AND status = 'active' LIMIT 1
	`, userID).Scan(&squadID)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return squadID, true, nil
}

func (r *PgxRepository) CreditSquadForCompletion(ctx context.Context, tx pgx.Tx, squadID, userID, playerID string) error {
	if _, err := tx.Exec(ctx, `
		UPDATE coaching_squads SET total_points = total_points + 1, unspent_points = unspent_points + 1, updated_at = now()
		WHERE id = $1
	`, squadID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE squad_members SET points_contributed = points_contributed + 1
		WHERE squad_id = $1 AND user_id = $2
	`, squadID, userID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO squad_point_events (id, squad_id, user_id, points, reason, player_id, created_at)
		VALUES (gen_random_uuid(), $1, $2, 1, 'premier_completion', $3, now())
	`, squadID, userID, playerID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.UserID, &p.DisplayName, &p.OverallRating, &p.CurrentLeague, &p.CareerStatus,
		&p.CareerStartedAt, &p.CareerCompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
