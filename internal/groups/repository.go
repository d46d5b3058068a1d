package groups

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the persistence seam for friend groups.
type Repository interface {
	// InsertGroup attempts an insert under the given invite code; inserted
	// is false on a unique-constraint collision so the service can retry
	// with a freshly generated code.
	InsertGroup(ctx context.Context, tx pgx.Tx, g *Group) (inserted bool, err error)
	InsertMember(ctx context.Context, tx pgx.Tx, m *Member) error

	FindByInviteCode(ctx context.Context, tx pgx.Tx, code string) (*Group, bool, error)
	GetMember(ctx context.Context, tx pgx.Tx, groupID, userID string) (*Member, bool, error)
	RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID string) error

	GroupsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Group, error)
	MemberStats(ctx context.Context, tx pgx.Tx, groupID string) ([]LeaderboardRow, error)
}
