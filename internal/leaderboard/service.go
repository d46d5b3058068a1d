package leaderboard

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor is the slice of dbx.Pool leaderboard needs, narrowed so
// tests can run against MemoryRepository without a database.
type Transactor interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

type Service struct {
	db   Transactor
	repo Repository
}

func NewService(db Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// GlobalLeaderboard returns the top 100 coaches plus the caller's own row,
// synthesizing one at rank total+1 with zeroed fields — and upserting a
// durable zeroed coach_stats row — when the caller has no stats yet.
func (s *Service) GlobalLeaderboard(ctx context.Context, callerUserID, callerDisplayName string) (*Result, error) {
	var result Result
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		rows, total, err := s.repo.WindowedBoard(ctx, tx, callerUserID)
		if err != nil {
			return err
		}

		var entries []Row
		var myEntry *Row
		for i := range rows {
			if rows[i].Rank <= 100 {
				entries = append(entries, rows[i])
			}
			if rows[i].UserID == callerUserID {
				found := rows[i]
				myEntry = &found
			}
		}

		if myEntry == nil {
			synthetic := Row{Rank: total + 1, UserID: callerUserID, DisplayName: callerDisplayName}
			myEntry = &synthetic
			total++
			if err := s.repo.EnsureStatsRow(ctx, tx, callerUserID, callerDisplayName); err != nil {
				return err
			}
		}

		result = Result{Entries: entries, MyEntry: *myEntry, TotalCoaches: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
