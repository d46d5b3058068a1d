package sweep

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"footybrain/internal/careers"
)

type PgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) *PgxRepository {
	return &PgxRepository{pool: pool}
}

func (r *PgxRepository) LockState(ctx context.Context, tx pgx.Tx) (*State, error) {
	row := tx.QueryRow(ctx, `
		SELECT last_sweep_utc_day, last_sweep_at, run_count
		FROM sweep_state WHERE id = 1
		FOR UPDATE
	`)
	var s State
	if err := row.Scan(&s.LastSweepUTCDay, &s.LastSweepAt, &s.RunCount); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgxRepository) StampRun(ctx context.Context, tx pgx.Tx, day int64, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE sweep_state SET last_sweep_utc_day = $1, last_sweep_at = $2, run_count = run_count + 1
		WHERE id = 1
	`, day, now)
	return err
}

func (r *PgxRepository) LoadActivePlayers(ctx context.Context) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, current_league, overall_rating
		FROM players WHERE career_status = 'active'
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.PlayerID, &c.UserID, &c.CurrentLeague, &c.Rating); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgxRepository) PromoteLeague(ctx context.Context, fromLeague, toLeague careers.League, minRating int, playerIDs []string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE players SET current_league = $1, updated_at = now()
		WHERE career_status = 'active' AND current_league = $2 AND overall_rating >= $3 AND id = ANY($4)
	`, toLeague, fromLeague, minRating, playerIDs)
	return err
}

func (r *PgxRepository) State(ctx context.Context) (*State, error) {
	row := r.pool.QueryRow(ctx, `SELECT last_sweep_utc_day, last_sweep_at, run_count FROM sweep_state WHERE id = 1`)
	var s State
	if err := row.Scan(&s.LastSweepUTCDay, &s.LastSweepAt, &s.RunCount); err != nil {
		return nil, err
	}
	return &s, nil
}
