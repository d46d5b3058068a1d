package leaderboard

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type fakeTransactor struct{}

func (fakeTransactor) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}
