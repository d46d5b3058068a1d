package squads

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the persistence seam for squad lifecycle, membership, join
// requests and facility upgrades.
type Repository interface {
	ActiveMembership(ctx context.Context, tx pgx.Tx, userID string) (*Member, bool, error)
	TagTaken(ctx context.Context, tx pgx.Tx, tag string) (bool, error)
	InsertSquad(ctx context.Context, tx pgx.Tx, s *Squad) error
	InsertMember(ctx context.Context, tx pgx.Tx, m *Member) error
	InsertFacilityRows(ctx context.Context, tx pgx.Tx, squadID string) error

	LockSquad(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, error)
	TouchSquad(ctx context.Context, tx pgx.Tx, squadID string) error

	GetMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error)
	LockMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error)
	UpsertMemberActive(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error
	SetMemberStatus(ctx context.Context, tx pgx.Tx, squadID, userID string, status MemberStatus) error
	SetMemberRole(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error
	CountActiveMembers(ctx context.Context, tx pgx.Tx, squadID string) (int, error)
	HasOtherActiveLeaderOrCoLeader(ctx context.Context, tx pgx.Tx, squadID, excludingUserID string) (bool, error)

	FindPendingJoinRequest(ctx context.Context, tx pgx.Tx, squadID, userID string) (*JoinRequest, bool, error)
	InsertJoinRequest(ctx context.Context, tx pgx.Tx, r *JoinRequest) (*JoinRequest, error)
	LockJoinRequest(ctx context.Context, tx pgx.Tx, requestID string) (*JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, tx pgx.Tx, requestID string, status JoinRequestStatus, resolvedBy string) error

	LockFacility(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) (*Facility, error)
	IncrementFacilityLevel(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) error
	SumFacilityLevels(ctx context.Context, tx pgx.Tx, squadID string) (int, error)
	AdjustSquadPoints(ctx context.Context, tx pgx.Tx, squadID string, deltaUnspent int, newLevel int) error
	InsertSpendTransaction(ctx context.Context, tx pgx.Tx, squadID, userID string, facility FacilityType, amount int) error

	Leaderboard(ctx context.Context, tx pgx.Tx, limit int) ([]Squad, error)
	Search(ctx context.Context, tx pgx.Tx, query string, limit int) ([]Squad, error)
	SquadsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Squad, error)
	Profile(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, []Member, []Facility, error)
	PendingRequests(ctx context.Context, tx pgx.Tx, squadID string) ([]JoinRequest, error)
	Activity(ctx context.Context, tx pgx.Tx, squadID string, limit int) ([]ActivityEvent, error)
}
