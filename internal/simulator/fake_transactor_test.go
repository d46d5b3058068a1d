package simulator

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// fakeTransactor runs fn directly against a nil pgx.Tx — leagues.MemoryRepository
// never touches tx, so there's nothing to begin/commit.
type fakeTransactor struct{}

func (fakeTransactor) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}
