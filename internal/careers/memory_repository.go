package careers

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// MemoryRepository is an in-process Repository double for tests — the
// Non-goal-compliant backend, never shipped (spec.md §9).
type MemoryRepository struct {
	mu sync.Mutex

	players     map[string]*Player
	completions map[string]*CareerCompletion
	coachStats  map[string]*CoachStats
	squadOf     map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		players:     map[string]*Player{},
		completions: map[string]*CareerCompletion{},
		coachStats:  map[string]*CoachStats{},
		squadOf:     map[string]string{},
	}
}

func (m *MemoryRepository) SeedPlayer(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.players[p.ID] = &cp
}

func (m *MemoryRepository) SeedActiveSquadMembership(userID, squadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.squadOf[userID] = squadID
}

func (m *MemoryRepository) UpsertPlayer(ctx context.Context, tx pgx.Tx, p *Player) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.players[p.ID]; ok {
		if p.DisplayName != "" {
			existing.DisplayName = p.DisplayName
		}
		return false, nil
	}
	cp := *p
	cp.CareerStatus = StatusActive
	m.players[p.ID] = &cp
	return true, nil
}

func (m *MemoryRepository) UpsertZeroedCoachStats(ctx context.Context, tx pgx.Tx, userID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coachStats[userID]; ok {
		return nil
	}
	m.coachStats[userID] = &CoachStats{UserID: userID, DisplayName: displayName}
	return nil
}

func (m *MemoryRepository) UpdateProgress(ctx context.Context, tx pgx.Tx, playerID string, rating *int, league *League) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok || p.CareerStatus != StatusActive {
		return nil, pgx.ErrNoRows
	}
	if rating != nil {
		p.OverallRating = *rating
	}
	if league != nil {
		p.CurrentLeague = *league
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) LockPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) MarkPlayerCompleted(ctx context.Context, tx pgx.Tx, playerID string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.CareerStatus = StatusCompleted
	t := completedAt
	p.CareerCompletedAt = &t
	return nil
}

func (m *MemoryRepository) InsertCompletion(ctx context.Context, tx pgx.Tx, c *CareerCompletion) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.completions[c.PlayerID]; ok {
		return false, nil
	}
	cp := *c
	m.completions[c.PlayerID] = &cp
	return true, nil
}

func (m *MemoryRepository) UpsertCoachStatsOnCompletion(ctx context.Context, tx pgx.Tx, userID, displayName string, daysToPremier int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.coachStats[userID]
	if !ok {
		st = &CoachStats{UserID: userID, DisplayName: displayName}
		m.coachStats[userID] = st
	}
	st.CompletionsCount++
	st.TotalDaysSum += int64(daysToPremier)
	if st.BestDaysToPremier == nil || daysToPremier < *st.BestDaysToPremier {
		d := daysToPremier
		st.BestDaysToPremier = &d
	}
	avg := int(math.Round(float64(st.TotalDaysSum) / float64(st.CompletionsCount)))
	st.AvgDaysToPremier = &avg
	return nil
}

func (m *MemoryRepository) ActiveSquadMembership(ctx context.Context, tx pgx.Tx, userID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	squadID, ok := m.squadOf[userID]
	return squadID, ok, nil
}

func (m *MemoryRepository) CreditSquadForCompletion(ctx context.Context, tx pgx.Tx, squadID, userID, playerID string) error {
	return nil
}

func (m *MemoryRepository) CoachStatsFor(userID string) *CoachStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.coachStats[userID]; ok {
		cp := *st
		return &cp
	}
	return nil
}

func (m *MemoryRepository) CompletionFor(playerID string) *CareerCompletion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.completions[playerID]; ok {
		cp := *c
		return &cp
	}
	return nil
}
