package squads

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"footybrain/internal/apperr"
)

// Transactor is the slice of dbx.Pool squads needs, narrowed so tests can
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

var tagPattern = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

func sanitizeTag(tag string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(tag))
	if !tagPattern.MatchString(clean) {
		return "", apperr.Validation("tag must be 2-5 uppercase alphanumeric characters")
	}
	return clean, nil
}

type CreateSquadInput struct {
	UserID      string
	Name        string
	Tag         string // optional; empty means none
	Description string
	Privacy     Privacy // defaults to PrivacyOpen when empty
}

func (s *Service) CreateSquad(ctx context.Context, in CreateSquadInput) (*Squad, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("user_id and name are required")
	}
	privacy := in.Privacy
	if privacy == "" {
		privacy = PrivacyOpen
	}
	if privacy != PrivacyOpen && privacy != PrivacyRequest && privacy != PrivacyClosed {
		return nil, apperr.Validation("privacy must be one of open, request, closed")
	}

	var tagPtr *string
	if strings.TrimSpace(in.Tag) != "" {
		clean, err := sanitizeTag(in.Tag)
		if err != nil {
			return nil, err
		}
		tagPtr = &clean
	}

	var out Squad
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, active, err := s.repo.ActiveMembership(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if active {
			return apperr.Conflict("you already belong to a squad")
		}

		if tagPtr != nil {
			taken, err := s.repo.TagTaken(ctx, tx, *tagPtr)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("tag already in use")
			}
		}

		sq := &Squad{Name: in.Name, Tag: tagPtr, Description: in.Description, LeaderUserID: in.UserID, Privacy: privacy}
		if err := s.repo.InsertSquad(ctx, tx, sq); err != nil {
			return err
		}
		if err := s.repo.InsertMember(ctx, tx, &Member{SquadID: sq.ID, UserID: in.UserID, Role: RoleLeader, Status: MemberActive}); err != nil {
			return err
		}
		if err := s.repo.InsertFacilityRows(ctx, tx, sq.ID); err != nil {
			return err
		}
		out = *sq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) JoinOpenSquad(ctx context.Context, userID, squadID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.joinOpenLocked(ctx, tx, userID, squadID)
	})
}

// joinOpenLocked assumes tx already wraps the call; shared by JoinOpenSquad
// and RequestJoinSquad's open-squad shortcut.
func (s *Service) joinOpenLocked(ctx context.Context, tx pgx.Tx, userID, squadID string) error {
	sq, err := s.repo.LockSquad(ctx, tx, squadID)
	if err == pgx.ErrNoRows {
		return apperr.NotFound("squad not found")
	}
	if err != nil {
		return err
	}
	if sq.Privacy != PrivacyOpen {
		return apperr.Conflict("squad is not open")
	}
	_, active, err := s.repo.ActiveMembership(ctx, tx, userID)
	if err != nil {
		return err
	}
	if active {
		return apperr.Conflict("you already belong to a squad")
	}
	if err := s.repo.UpsertMemberActive(ctx, tx, squadID, userID, RoleMember); err != nil {
		return err
	}
	return s.repo.TouchSquad(ctx, tx, squadID)
}

func (s *Service) RequestJoinSquad(ctx context.Context, userID, squadID string) (*JoinRequest, error) {
	var out *JoinRequest
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		sq, err := s.repo.LockSquad(ctx, tx, squadID)
		if err == pgx.ErrNoRows {
			return apperr.NotFound("squad not found")
		}
		if err != nil {
			return err
		}

		switch sq.Privacy {
		case PrivacyClosed:
			return apperr.Forbidden("squad is closed to join requests")
		case PrivacyOpen:
			return s.joinOpenLocked(ctx, tx, userID, squadID)
		}

		if existing, ok, err := s.repo.FindPendingJoinRequest(ctx, tx, squadID, userID); err != nil {
			return err
		} else if ok {
			out = existing
			return nil
		}

		_, active, err := s.repo.ActiveMembership(ctx, tx, userID)
		if err != nil {
			return err
		}
		if active {
			return apperr.Conflict("you already belong to a squad")
		}

		jr, err := s.repo.InsertJoinRequest(ctx, tx, &JoinRequest{SquadID: squadID, UserID: userID})
		if err != nil {
			return err
		}
		out = jr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveSquadJoinRequest approves or rejects a pending request. When
// approve=true but the applicant picked up another active membership
// while the request sat pending, the request is auto-rejected and that
// commits normally — the caller still gets back a non-nil error naming
// the reason, per spec.md's join-request-race scenario, but the request
// row's resolved state is not rolled back with it.
func (s *Service) ResolveSquadJoinRequest(ctx context.Context, requestID, resolverUserID string, approve bool) (*JoinRequest, error) {
	var out JoinRequest
	var autoRejected bool

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		jr, err := s.repo.LockJoinRequest(ctx, tx, requestID)
		if err == pgx.ErrNoRows {
			return apperr.NotFound("join request not found")
		}
		if err != nil {
			return err
		}
		if jr.Status != RequestPending {
			return apperr.Conflict("join request already resolved")
		}

		resolver, ok, err := s.repo.GetMember(ctx, tx, jr.SquadID, resolverUserID)
		if err != nil {
			return err
		}
		if !ok || resolver.Status != MemberActive || (resolver.Role != RoleLeader && resolver.Role != RoleCoLeader) {
			return apperr.Forbidden("only a leader or co-leader may resolve join requests")
		}

		status := RequestRejected
		if approve {
			_, active, err := s.repo.ActiveMembership(ctx, tx, jr.UserID)
			if err != nil {
				return err
			}
			if active {
				autoRejected = true
			} else {
				status = RequestApproved
				if err := s.repo.UpsertMemberActive(ctx, tx, jr.SquadID, jr.UserID, RoleMember); err != nil {
					return err
				}
				if err := s.repo.TouchSquad(ctx, tx, jr.SquadID); err != nil {
					return err
				}
			}
		}

		if err := s.repo.ResolveJoinRequest(ctx, tx, requestID, status, resolverUserID); err != nil {
			return err
		}
		out = *jr
		out.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	if autoRejected {
		return &out, apperr.Conflict("applicant already belongs to a squad; request auto-rejected")
	}
	return &out, nil
}

func (s *Service) LeaveSquad(ctx context.Context, userID, squadID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		mem, ok, err := s.repo.LockMember(ctx, tx, squadID, userID)
		if err != nil {
			return err
		}
		if !ok || mem.Status != MemberActive {
			return apperr.NotFound("you are not an active member of this squad")
		}

		if mem.Role == RoleLeader {
			count, err := s.repo.CountActiveMembers(ctx, tx, squadID)
			if err != nil {
				return err
			}
			if count > 1 {
				hasSuccessor, err := s.repo.HasOtherActiveLeaderOrCoLeader(ctx, tx, squadID, userID)
				if err != nil {
					return err
				}
				if !hasSuccessor {
					return apperr.Conflict("promote a co-leader before leaving")
				}
			}
		}

		return s.repo.SetMemberStatus(ctx, tx, squadID, userID, MemberInactive)
	})
}

func (s *Service) UpgradeSquadFacility(ctx context.Context, userID, squadID string, facility FacilityType) (*Squad, error) {
	if !IsValidFacilityType(facility) {
		return nil, apperr.Validation("unknown facility_type")
	}
	var out Squad
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		mem, ok, err := s.repo.GetMember(ctx, tx, squadID, userID)
		if err != nil {
			return err
		}
		if !ok || mem.Status != MemberActive || (mem.Role != RoleLeader && mem.Role != RoleCoLeader) {
			return apperr.Forbidden("only a leader or co-leader may upgrade facilities")
		}

		sq, err := s.repo.LockSquad(ctx, tx, squadID)
		if err == pgx.ErrNoRows {
			return apperr.NotFound("squad not found")
		}
		if err != nil {
			return err
		}

		fac, err := s.repo.LockFacility(ctx, tx, squadID, facility)
		if err != nil {
			return err
		}

		cost := UpgradeCost(facility, fac.Level)
		if sq.UnspentPoints < cost {
			return apperr.Conflict("insufficient unspent points")
		}

		if err := s.repo.IncrementFacilityLevel(ctx, tx, squadID, facility); err != nil {
			return err
		}
		totalLevels, err := s.repo.SumFacilityLevels(ctx, tx, squadID)
		if err != nil {
			return err
		}
		newLevel := SquadLevel(totalLevels)
		if err := s.repo.AdjustSquadPoints(ctx, tx, squadID, -cost, newLevel); err != nil {
			return err
		}
		if err := s.repo.InsertSpendTransaction(ctx, tx, squadID, userID, facility, cost); err != nil {
			return err
		}

		out = *sq
		out.UnspentPoints -= cost
		out.Level = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) SetMemberRole(ctx context.Context, leaderUserID, squadID, targetUserID string, role Role) error {
	if role != RoleCoLeader && role != RoleMember {
		return apperr.Validation("role must be co_leader or member")
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		sq, err := s.repo.LockSquad(ctx, tx, squadID)
		if err == pgx.ErrNoRows {
			return apperr.NotFound("squad not found")
		}
		if err != nil {
			return err
		}
		if sq.LeaderUserID != leaderUserID {
			return apperr.Forbidden("only the leader may change member roles")
		}
		target, ok, err := s.repo.GetMember(ctx, tx, squadID, targetUserID)
		if err != nil {
			return err
		}
		if !ok || target.Status != MemberActive {
			return apperr.NotFound("target is not an active member of this squad")
		}
		if target.Role == RoleLeader {
			return apperr.Conflict("cannot change the leader's own role")
		}
		return s.repo.SetMemberRole(ctx, tx, squadID, targetUserID, role)
	})
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Squad, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var out []Squad
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := s.repo.Leaderboard(ctx, tx, limit)
		out = res
		return err
	})
	return out, err
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]Squad, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []Squad
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := s.repo.Search(ctx, tx, query, limit)
		out = res
		return err
	})
	return out, err
}

func (s *Service) Mine(ctx context.Context, userID string) ([]Squad, error) {
	var out []Squad
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := s.repo.SquadsForUser(ctx, tx, userID)
		out = res
		return err
	})
	return out, err
}

func (s *Service) Profile(ctx context.Context, squadID string) (*Squad, []Member, []Facility, error) {
	var sq *Squad
	var members []Member
	var facilities []Facility
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		sq, members, facilities, err = s.repo.Profile(ctx, tx, squadID)
		if err == pgx.ErrNoRows {
			return apperr.NotFound("squad not found")
		}
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return sq, members, facilities, nil
}

func (s *Service) PendingRequests(ctx context.Context, callerUserID, squadID string) ([]JoinRequest, error) {
	var out []JoinRequest
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		caller, ok, err := s.repo.GetMember(ctx, tx, squadID, callerUserID)
		if err != nil {
			return err
		}
		if !ok || caller.Status != MemberActive || (caller.Role != RoleLeader && caller.Role != RoleCoLeader) {
			return apperr.Forbidden("only a leader or co-leader may view join requests")
		}
		res, err := s.repo.PendingRequests(ctx, tx, squadID)
		out = res
		return err
	})
	return out, err
}

func (s *Service) Activity(ctx context.Context, squadID string, limit int) ([]ActivityEvent, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var out []ActivityEvent
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := s.repo.Activity(ctx, tx, squadID, limit)
		out = res
		return err
	})
	return out, err
}
