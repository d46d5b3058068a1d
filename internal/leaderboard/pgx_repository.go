package leaderboard

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// PgxRepository is the production Repository, grounded on the teacher's
// GlobalLeaderboard/FriendsLeaderboard raw-SQL methods, upgraded to a
// single RANK() OVER (...) window query per spec.md §4.9.
type PgxRepository struct{}

func NewPgxRepository() *PgxRepository { return &PgxRepository{} }

func (r *PgxRepository) WindowedBoard(ctx context.Context, tx pgx.Tx, callerUserID string) ([]Row, int, error) {
	rows, err := tx.Query(ctx, `
		SELECT user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, rnk, total
		FROM (
			SELECT user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier,
				RANK() OVER (
					ORDER BY completions_count DESC,
						best_days_to_premier ASC NULLS LAST,
						avg_days_to_premier ASC NULLS LAST
				) AS rnk,
				COUNT(*) OVER () AS total
			FROM coach_stats
		) ranked
		WHERE rnk <= 100 OR user_id = $1
		ORDER BY rnk ASC
	`, callerUserID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Row
	var total int
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.CompletionsCount, &row.BestDaysToPremier, &row.AvgDaysToPremier, &row.Rank, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

func (r *PgxRepository) EnsureStatsRow(ctx context.Context, tx pgx.Tx, userID, displayName string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coach_stats (user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, total_days_sum)
		VALUES ($1, $2, 0, NULL, NULL, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, displayName)
	return err
}
