package squads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"footybrain/internal/apperr"
)

// MemoryRepository is an in-process Repository double for tests — the
// Non-goal-compliant backend, never shipped.
type MemoryRepository struct {
	mu         sync.Mutex
	squads     map[string]*Squad
	members    map[string]map[string]*Member // squadID -> userID -> member
	requests   map[string]*JoinRequest
	facilities map[string]map[FacilityType]*Facility
	events     []ActivityEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		squads:     map[string]*Squad{},
		members:    map[string]map[string]*Member{},
		requests:   map[string]*JoinRequest{},
		facilities: map[string]map[FacilityType]*Facility{},
	}
}

// SeedSquad inserts a squad plus its facility rows at level 0, for tests
// that need a pre-existing squad without going through CreateSquad.
func (m *MemoryRepository) SeedSquad(s Squad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	m.squads[s.ID] = &cp
	m.members[s.ID] = map[string]*Member{}
	m.facilities[s.ID] = map[FacilityType]*Facility{}
	for _, ft := range AllFacilityTypes {
		m.facilities[s.ID][ft] = &Facility{SquadID: s.ID, Type: ft, Level: 0}
	}
}

func (m *MemoryRepository) SeedMember(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[mem.SquadID] == nil {
		m.members[mem.SquadID] = map[string]*Member{}
	}
	cp := mem
	m.members[mem.SquadID][mem.UserID] = &cp
}

func (m *MemoryRepository) ActiveMembership(ctx context.Context, tx pgx.Tx, userID string) (*Member, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, byUser := range m.members {
		if mem, ok := byUser[userID]; ok && mem.Status == MemberActive {
			cp := *mem
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) TagTaken(ctx context.Context, tx pgx.Tx, tag string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.squads {
		if s.Tag != nil && *s.Tag == tag {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) InsertSquad(ctx context.Context, tx pgx.Tx, s *Squad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	s.TotalPoints, s.UnspentPoints, s.Level = 0, 0, 1
	cp := *s
	m.squads[s.ID] = &cp
	m.members[s.ID] = map[string]*Member{}
	m.facilities[s.ID] = map[FacilityType]*Facility{}
	return nil
}

func (m *MemoryRepository) InsertMember(ctx context.Context, tx pgx.Tx, mem *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem.JoinedAt = time.Now()
	if m.members[mem.SquadID] == nil {
		m.members[mem.SquadID] = map[string]*Member{}
	}
	cp := *mem
	m.members[mem.SquadID][mem.UserID] = &cp
	return nil
}

func (m *MemoryRepository) InsertFacilityRows(ctx context.Context, tx pgx.Tx, squadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.facilities[squadID] == nil {
		m.facilities[squadID] = map[FacilityType]*Facility{}
	}
	for _, ft := range AllFacilityTypes {
		if _, ok := m.facilities[squadID][ft]; !ok {
			m.facilities[squadID][ft] = &Facility{SquadID: squadID, Type: ft, Level: 0}
		}
	}
	return nil
}

func (m *MemoryRepository) LockSquad(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.squads[squadID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) TouchSquad(ctx context.Context, tx pgx.Tx, squadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.squads[squadID]; ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MemoryRepository) GetMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[squadID][userID]
	if !ok {
		return nil, false, nil
	}
	cp := *mem
	return &cp, true, nil
}

func (m *MemoryRepository) LockMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error) {
	return m.GetMember(ctx, tx, squadID, userID)
}

func (m *MemoryRepository) UpsertMemberActive(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[squadID] == nil {
		m.members[squadID] = map[string]*Member{}
	}
	if mem, ok := m.members[squadID][userID]; ok {
		mem.Status = MemberActive
		mem.Role = role
		return nil
	}
	m.members[squadID][userID] = &Member{SquadID: squadID, UserID: userID, Role: role, Status: MemberActive, JoinedAt: time.Now()}
	return nil
}

func (m *MemoryRepository) SetMemberStatus(ctx context.Context, tx pgx.Tx, squadID, userID string, status MemberStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem, ok := m.members[squadID][userID]; ok {
		mem.Status = status
	}
	return nil
}

func (m *MemoryRepository) SetMemberRole(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem, ok := m.members[squadID][userID]; ok {
		mem.Role = role
	}
	return nil
}

func (m *MemoryRepository) CountActiveMembers(ctx context.Context, tx pgx.Tx, squadID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mem := range m.members[squadID] {
		if mem.Status == MemberActive {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) HasOtherActiveLeaderOrCoLeader(ctx context.Context, tx pgx.Tx, squadID, excludingUserID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, mem := range m.members[squadID] {
		if uid == excludingUserID {
			continue
		}
		if mem.Status == MemberActive && (mem.Role == RoleLeader || mem.Role == RoleCoLeader) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) FindPendingJoinRequest(ctx context.Context, tx pgx.Tx, squadID, userID string) (*JoinRequest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, jr := range m.requests {
		if jr.SquadID == squadID && jr.UserID == userID && jr.Status == RequestPending {
			cp := *jr
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) InsertJoinRequest(ctx context.Context, tx pgx.Tx, jr *JoinRequest) (*JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if jr.ID == "" {
		jr.ID = uuid.NewString()
	}
	jr.Status = RequestPending
	jr.CreatedAt = time.Now()
	cp := *jr
	m.requests[jr.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MemoryRepository) LockJoinRequest(ctx context.Context, tx pgx.Tx, requestID string) (*JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jr, ok := m.requests[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *jr
	return &cp, nil
}

func (m *MemoryRepository) ResolveJoinRequest(ctx context.Context, tx pgx.Tx, requestID string, status JoinRequestStatus, resolvedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	jr, ok := m.requests[requestID]
	if !ok {
		return apperr.NotFound("join request not found")
	}
	now := time.Now()
	jr.Status = status
	jr.ResolvedAt = &now
	jr.ResolvedBy = &resolvedBy
	return nil
}

func (m *MemoryRepository) LockFacility(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) (*Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[squadID][facility]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *f
	return &cp, nil
}

func (m *MemoryRepository) IncrementFacilityLevel(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.facilities[squadID][facility]; ok {
		f.Level++
	}
	return nil
}

func (m *MemoryRepository) SumFacilityLevels(ctx context.Context, tx pgx.Tx, squadID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, f := range m.facilities[squadID] {
		sum += f.Level
	}
	return sum, nil
}

func (m *MemoryRepository) AdjustSquadPoints(ctx context.Context, tx pgx.Tx, squadID string, deltaUnspent int, newLevel int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.squads[squadID]
	if !ok {
		return apperr.NotFound("squad not found")
	}
	s.UnspentPoints += deltaUnspent
	s.Level = newLevel
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) InsertSpendTransaction(ctx context.Context, tx pgx.Tx, squadID, userID string, facility FacilityType, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ActivityEvent{Kind: "spent", SquadID: squadID, UserID: &userID, Points: amount, Reason: string(facility), CreatedAt: time.Now()})
	return nil
}

// CreditCompletion mirrors careers.PgxRepository.CreditSquadForCompletion,
// used by tests that exercise the careers->squads crediting path against
// this double instead of a live database.
func (m *MemoryRepository) CreditCompletion(squadID, userID, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.squads[squadID]; ok {
		s.TotalPoints++
		s.UnspentPoints++
		s.UpdatedAt = time.Now()
	}
	if mem, ok := m.members[squadID][userID]; ok {
		mem.PointsContributed++
	}
	m.events = append(m.events, ActivityEvent{Kind: "earned", SquadID: squadID, UserID: &userID, Points: 1, Reason: "premier_completion", CreatedAt: time.Now()})
}

func (m *MemoryRepository) Leaderboard(ctx context.Context, tx pgx.Tx, limit int) ([]Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.allSquads()
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Search(ctx context.Context, tx pgx.Tx, query string, limit int) ([]Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []Squad
	for _, s := range m.squads {
		if strings.Contains(strings.ToLower(s.Name), q) || (s.Tag != nil && strings.Contains(strings.ToLower(*s.Tag), q)) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) SquadsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Squad
	for squadID, byUser := range m.members {
		if mem, ok := byUser[userID]; ok && mem.Status == MemberActive {
			if s, ok := m.squads[squadID]; ok {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) Profile(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, []Member, []Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.squads[squadID]
	if !ok {
		return nil, nil, nil, pgx.ErrNoRows
	}
	var members []Member
	for _, mem := range m.members[squadID] {
		if mem.Status == MemberActive {
			members = append(members, *mem)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	var facilities []Facility
	for _, ft := range AllFacilityTypes {
		if f, ok := m.facilities[squadID][ft]; ok {
			facilities = append(facilities, *f)
		}
	}
	cp := *s
	return &cp, members, facilities, nil
}

func (m *MemoryRepository) PendingRequests(ctx context.Context, tx pgx.Tx, squadID string) ([]JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []JoinRequest
	for _, jr := range m.requests {
		if jr.SquadID == squadID && jr.Status == RequestPending {
			out = append(out, *jr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Activity(ctx context.Context, tx pgx.Tx, squadID string, limit int) ([]ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ActivityEvent
	for _, e := range m.events {
		if e.SquadID == squadID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) allSquads() []Squad {
	out := make([]Squad, 0, len(m.squads))
	for _, s := range m.squads {
		out = append(out, *s)
	}
	return out
}
