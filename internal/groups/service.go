package groups

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/apperr"
)

// Transactor is the slice of dbx.Pool groups needs, narrowed so tests can
// run against MemoryRepository without a database.
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

const inviteCodeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const inviteCodeLen = 6
const maxInviteCollisionRetries = 5

// generateInviteCode mirrors the teacher's generateInviteCode, shortened
// to spec.md's 6-character length and excluding visually ambiguous
// characters (0/O, 1/I).
func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = inviteCodeLetters[int(buf[i])%len(inviteCodeLetters)]
	}
	return string(buf), nil
}

type CreateGroupInput struct {
	UserID string
	Name   string
}

func (s *Service) CreateGroup(ctx context.Context, in CreateGroupInput) (*Group, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("user_id and name are required")
	}

	var out Group
	for attempt := 0; attempt < maxInviteCollisionRetries; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, apperr.Infra("generate invite code", err)
		}

		g := &Group{Name: in.Name, InviteCode: code, CreatedBy: in.UserID}
		var inserted bool
		err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
			ok, err := s.repo.InsertGroup(ctx, tx, g)
			if err != nil {
				return err
			}
			inserted = ok
			if !ok {
				return nil
			}
			return s.repo.InsertMember(ctx, tx, &Member{GroupID: g.ID, UserID: in.UserID, Role: RoleAdmin})
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			out = *g
			return &out, nil
		}
	}
	return nil, apperr.Infra("could not allocate a unique invite code after 5 attempts", nil)
}

type JoinGroupResult struct {
	Group         *Group
	AlreadyMember bool
}

func (s *Service) JoinGroup(ctx context.Context, userID, inviteCode string) (*JoinGroupResult, error) {
	if strings.TrimSpace(inviteCode) == "" {
		return nil, apperr.Validation("invite_code is required")
	}
	var out JoinGroupResult
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		g, ok, err := s.repo.FindByInviteCode(ctx, tx, inviteCode)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("no group with that invite code")
		}
		out.Group = g

		if _, member, err := s.repo.GetMember(ctx, tx, g.ID, userID); err != nil {
			return err
		} else if member {
			out.AlreadyMember = true
			return nil
		}

		return s.repo.InsertMember(ctx, tx, &Member{GroupID: g.ID, UserID: userID, Role: RoleMember})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) LeaveGroup(ctx context.Context, userID, groupID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, ok, err := s.repo.GetMember(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("you are not a member of this group")
		}
		return s.repo.RemoveMember(ctx, tx, groupID, userID)
	})
}

func (s *Service) Mine(ctx context.Context, userID string) ([]Group, error) {
	var out []Group
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := s.repo.GroupsForUser(ctx, tx, userID)
		out = res
		return err
	})
	return out, err
}

// GetGroupLeaderboard ranks members with the same comparator as the
// global board: completions_count desc, best_days_to_premier asc (nulls
// last), avg_days_to_premier asc (nulls last).
func (s *Service) GetGroupLeaderboard(ctx context.Context, requesterUserID, groupID string) ([]LeaderboardRow, error) {
	var out []LeaderboardRow
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, ok, err := s.repo.GetMember(ctx, tx, groupID, requesterUserID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("you must be a member of this group to view its leaderboard")
		}
		rows, err := s.repo.MemberStats(ctx, tx, groupID)
		if err != nil {
			return err
		}
		sortRows(rows)
		for i := range rows {
			rows[i].Rank = i + 1
		}
		out = rows
		return nil
	})
	return out, err
}

func sortRows(rows []LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CompletionsCount != b.CompletionsCount {
			return a.CompletionsCount > b.CompletionsCount
		}
		if cmp := compareNullableAsc(a.BestDaysToPremier, b.BestDaysToPremier); cmp != 0 {
			return cmp < 0
		}
		return compareNullableAsc(a.AvgDaysToPremier, b.AvgDaysToPremier) < 0
	})
}

// compareNullableAsc orders *int ascending with nil ("no data") last.
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
