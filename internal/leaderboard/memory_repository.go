package leaderboard

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
)

// MemoryRepository is an in-process Repository double for tests — the
// Non-goal-compliant backend, never shipped.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]Row
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[string]Row{}}
}

func (m *MemoryRepository) SeedRow(row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.UserID] = row
}

func (m *MemoryRepository) WindowedBoard(ctx context.Context, tx pgx.Tx, callerUserID string) ([]Row, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]Row, 0, len(m.rows))
	for _, r := range m.rows {
		all = append(all, r)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.CompletionsCount != b.CompletionsCount {
			return a.CompletionsCount > b.CompletionsCount
		}
		if c := compareNullableAsc(a.BestDaysToPremier, b.BestDaysToPremier); c != 0 {
			return c < 0
		}
		return compareNullableAsc(a.AvgDaysToPremier, b.AvgDaysToPremier) < 0
	})

	total := len(all)
	var out []Row
	for i := range all {
		rank := i + 1
		all[i].Rank = rank
		if rank <= 100 || all[i].UserID == callerUserID {
			out = append(out, all[i])
		}
	}
	return out, total, nil
}

func (m *MemoryRepository) EnsureStatsRow(ctx context.Context, tx pgx.Tx, userID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[userID]; ok {
		return nil
	}
	m.rows[userID] = Row{UserID: userID, DisplayName: displayName}
	return nil
}

func compareNullableAsc(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a == *b:
		return 0
	case *a < *b:
		return -1
	default:
		return 1
	}
}
