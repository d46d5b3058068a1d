package leaderboard

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the persistence seam for the global ranking.
type Repository interface {
	// WindowedBoard returns every row ranked <= 100 plus callerUserID's
	// row if it falls outside that window, and the total coach count —
	// all from one RANK() OVER (...) query.
	WindowedBoard(ctx context.Context, tx pgx.Tx, callerUserID string) (rows []Row, total int, err error)

	// EnsureStatsRow upserts a zeroed coach_stats row for userID so a
	// first-time caller's presence on the board becomes durable.
	EnsureStatsRow(ctx context.Context, tx pgx.Tx, userID, displayName string) error
}
