package sweep

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/careers"
)

// Repository is the persistence seam for the sweep's state and player
// batch reads/writes.
type Repository interface {
	LockState(ctx context.Context, tx pgx.Tx) (*State, error)
	StampRun(ctx context.Context, tx pgx.Tx, day int64, now time.Time) error

	LoadActivePlayers(ctx context.Context) ([]Candidate, error)
	PromoteLeague(ctx context.Context, fromLeague careers.League, toLeague careers.League, minRating int, playerIDs []string) error

	State(ctx context.Context) (*State, error)
}
