package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/careers"
)

// MemoryRepository is an in-process Repository double for tests — the
// Non-goal-compliant backend, never shipped.
type MemoryRepository struct {
	mu sync.Mutex

	state   State
	players []Candidate
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) SeedPlayers(players []Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = players
}

func (m *MemoryRepository) SeedState(day *int64, at *time.Time, runCount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{LastSweepUTCDay: day, LastSweepAt: at, RunCount: runCount}
}

func (m *MemoryRepository) LockState(ctx context.Context, tx pgx.Tx) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.state
	return &cp, nil
}

func (m *MemoryRepository) StampRun(ctx context.Context, tx pgx.Tx, day int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastSweepUTCDay = &day
	m.state.LastSweepAt = &now
	m.state.RunCount++
	return nil
}

func (m *MemoryRepository) LoadActivePlayers(ctx context.Context) ([]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Candidate, len(m.players))
	copy(out, m.players)
	return out, nil
}

func (m *MemoryRepository) PromoteLeague(ctx context.Context, fromLeague, toLeague careers.League, minRating int, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := map[string]bool{}
	for _, id := range playerIDs {
		ids[id] = true
	}
	for i := range m.players {
		p := &m.players[i]
		if ids[p.PlayerID] && p.CurrentLeague == fromLeague && p.Rating >= minRating {
			p.CurrentLeague = toLeague
		}
	}
	return nil
}

func (m *MemoryRepository) State(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.state
	return &cp, nil
}
