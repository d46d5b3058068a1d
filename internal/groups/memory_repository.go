package groups

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemoryRepository is an in-process Repository double for tests — the
// Non-goal-compliant backend, never shipped.
type MemoryRepository struct {
	mu      sync.Mutex
	groups  map[string]*Group
	members map[string]map[string]*Member // groupID -> userID -> member
	stats   map[string]LeaderboardRow      // userID -> stats snapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		groups:  map[string]*Group{},
		members: map[string]map[string]*Member{},
		stats:   map[string]LeaderboardRow{},
	}
}

// SeedStats lets tests populate the coach_stats side of the leaderboard
// join without going through the careers package.
func (m *MemoryRepository) SeedStats(userID, displayName string, completions int, best, avg *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[userID] = LeaderboardRow{UserID: userID, DisplayName: displayName, CompletionsCount: completions, BestDaysToPremier: best, AvgDaysToPremier: avg}
}

func (m *MemoryRepository) InsertGroup(ctx context.Context, tx pgx.Tx, g *Group) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.groups {
		if strings.EqualFold(existing.InviteCode, g.InviteCode) {
			return false, nil
		}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = time.Now()
	cp := *g
	m.groups[g.ID] = &cp
	m.members[g.ID] = map[string]*Member{}
	return true, nil
}

func (m *MemoryRepository) InsertMember(ctx context.Context, tx pgx.Tx, mem *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[mem.GroupID] == nil {
		m.members[mem.GroupID] = map[string]*Member{}
	}
	if _, ok := m.members[mem.GroupID][mem.UserID]; ok {
		return nil
	}
	mem.JoinedAt = time.Now()
	cp := *mem
	m.members[mem.GroupID][mem.UserID] = &cp
	return nil
}

func (m *MemoryRepository) FindByInviteCode(ctx context.Context, tx pgx.Tx, code string) (*Group, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if strings.EqualFold(g.InviteCode, code) {
			cp := *g
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) GetMember(ctx context.Context, tx pgx.Tx, groupID, userID string) (*Member, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[groupID][userID]
	if !ok {
		return nil, false, nil
	}
	cp := *mem
	return &cp, true, nil
}

func (m *MemoryRepository) RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[groupID], userID)
	return nil
}

func (m *MemoryRepository) GroupsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Group
	for groupID, byUser := range m.members {
		if _, ok := byUser[userID]; ok {
			if g, ok := m.groups[groupID]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) MemberStats(ctx context.Context, tx pgx.Tx, groupID string) ([]LeaderboardRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LeaderboardRow
	for userID := range m.members[groupID] {
		if row, ok := m.stats[userID]; ok {
			out = append(out, row)
		} else {
			out = append(out, LeaderboardRow{UserID: userID})
		}
	}
	return out, nil
}
