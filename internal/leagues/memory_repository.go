package leagues

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// MemoryRepository is an in-process Repository double for simulator
// tests — the Non-goal-compliant backend, never shipped.
type MemoryRepository struct {
	mu sync.Mutex

	clubs       map[Tier][]Club
	seasons     map[Tier]*Season
	progress    map[string]*SeasonProgress
	fixtures    map[string][]*Fixture // key: seasonID
	teamSeasons map[string]map[string]*TeamSeason
	nextID      int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		clubs:       map[Tier][]Club{},
		seasons:     map[Tier]*Season{},
		progress:    map[string]*SeasonProgress{},
		fixtures:    map[string][]*Fixture{},
		teamSeasons: map[string]map[string]*TeamSeason{},
	}
}

func (m *MemoryRepository) SeedClubs(tier Tier, clubs []Club) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clubs[tier] = clubs
}

func (m *MemoryRepository) genID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *MemoryRepository) ActiveSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seasons[tier]
	if !ok || s.Status != SeasonActive {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) CreateSeason(ctx context.Context, tx pgx.Tx, tier Tier) (*Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Season{ID: m.genID("season"), Tier: tier, CurrentMatchday: 1, TotalMatchdays: TotalMatchdays, Status: SeasonActive}
	m.seasons[tier] = s
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) LoadOrCreateProgress(ctx context.Context, tx pgx.Tx, seasonID string) (*SeasonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[seasonID]
	if !ok {
		p = &SeasonProgress{SeasonID: seasonID, CurrentMatchday: 1}
		m.progress[seasonID] = p
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) AdvanceMatchday(ctx context.Context, tx pgx.Tx, seasonID string, nextMatchday int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.progress[seasonID]; ok {
		p.CurrentMatchday = nextMatchday
	}
	for _, s := range m.seasons {
		if s.ID == seasonID {
			s.CurrentMatchday = nextMatchday
		}
	}
	return nil
}

func (m *MemoryRepository) CompleteSeason(ctx context.Context, tx pgx.Tx, seasonID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seasons {
		if s.ID == seasonID {
			s.Status = SeasonCompleted
		}
	}
	return nil
}

func (m *MemoryRepository) ClubsForTier(ctx context.Context, tx pgx.Tx, tier Tier) ([]Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Club, len(m.clubs[tier]))
	copy(out, m.clubs[tier])
	return out, nil
}

func (m *MemoryRepository) FixturesForMatchday(ctx context.Context, tx pgx.Tx, seasonID string, matchday int) ([]Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Fixture
	for _, f := range m.fixtures[seasonID] {
		if f.Matchday == matchday {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *MemoryRepository) FixturesForSeason(ctx context.Context, tx pgx.Tx, seasonID string) ([]Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Fixture
	for _, f := range m.fixtures[seasonID] {
		out = append(out, *f)
	}
	return out, nil
}

func (m *MemoryRepository) InsertFixtures(ctx context.Context, tx pgx.Tx, seasonID string, tier Tier, matchday int, pairings []Pairing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairings {
		m.fixtures[seasonID] = append(m.fixtures[seasonID], &Fixture{
			ID: m.genID("fixture"), SeasonID: seasonID, Tier: tier, Matchday: matchday,
			HomeClubID: p.Home, AwayClubID: p.Away, Status: FixtureUpcoming,
		})
	}
	return nil
}

func (m *MemoryRepository) WriteFixtureResult(ctx context.Context, tx pgx.Tx, fixtureID string, homeGoals, awayGoals int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fs := range m.fixtures {
		for _, f := range fs {
			if f.ID == fixtureID {
				hg, ag := homeGoals, awayGoals
				f.HomeGoals = &hg
				f.AwayGoals = &ag
				f.Status = FixturePlayed
				now := time.Now()
				f.PlayedAt = &now
				return nil
			}
		}
	}
	return fmt.Errorf("fixture %s not found", fixtureID)
}

func (m *MemoryRepository) TeamSeasonsForSeason(ctx context.Context, tx pgx.Tx, seasonID string) (map[string]*TeamSeason, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]*TeamSeason{}
	for k, v := range m.teamSeasons[seasonID] {
		cp := *v
		out[k] = &cp
	}
	return out, nil
}

func (m *MemoryRepository) EnsureTeamSeason(ctx context.Context, tx pgx.Tx, seasonID, clubID, clubName string) (*TeamSeason, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.teamSeasons[seasonID] == nil {
		m.teamSeasons[seasonID] = map[string]*TeamSeason{}
	}
	ts, ok := m.teamSeasons[seasonID][clubID]
	if !ok {
		ts = &TeamSeason{SeasonID: seasonID, ClubID: clubID, ClubName: clubName}
		m.teamSeasons[seasonID][clubID] = ts
	}
	cp := *ts
	return &cp, nil
}

func (m *MemoryRepository) WriteTeamSeason(ctx context.Context, tx pgx.Tx, ts *TeamSeason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.teamSeasons[ts.SeasonID] == nil {
		m.teamSeasons[ts.SeasonID] = map[string]*TeamSeason{}
	}
	cp := *ts
	m.teamSeasons[ts.SeasonID][ts.ClubID] = &cp
	return nil
}
