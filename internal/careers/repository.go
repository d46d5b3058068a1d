package careers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository is the persistence seam for careers, letting Service be
// tested against an in-memory double instead of a live database — the
// Non-goal-compliant test backend, never shipped.
type Repository interface {
	UpsertPlayer(ctx context.Context, tx pgx.Tx, p *Player) (created bool, err error)
	UpsertZeroedCoachStats(ctx context.Context, tx pgx.Tx, userID, displayName string) error

	UpdateProgress(ctx context.Context, tx pgx.Tx, playerID string, rating *int, league *League) (*Player, error)

	// LockPlayer runs SELECT ... FOR UPDATE and returns the row, or
	// (nil, nil) if it doesn't exist.
	LockPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error)
	// GetPlayer is the unlocked read used by the owner-only lookup route.
	GetPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error)
	MarkPlayerCompleted(ctx context.Context, tx pgx.Tx, playerID string, completedAt time.Time) error

	// InsertCompletion inserts c; inserted is false when a concurrent
	// completer already holds the unique (player_id) slot.
	InsertCompletion(ctx context.Context, tx pgx.Tx, c *CareerCompletion) (inserted bool, err error)
	UpsertCoachStatsOnCompletion(ctx context.Context, tx pgx.Tx, userID, displayName string, daysToPremier int) error

	ActiveSquadMembership(ctx context.Context, tx pgx.Tx, userID string) (squadID string, ok bool, err error)
	CreditSquadForCompletion(ctx context.Context, tx pgx.Tx, squadID, userID, playerID string) error
}
