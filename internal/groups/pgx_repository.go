package groups

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxRepository is the production Repository, grounded on the teacher's
// AddFriend/RemoveFriend invite-code lookups.
type PgxRepository struct{}

func NewPgxRepository() *PgxRepository { return &PgxRepository{} }

func (r *PgxRepository) InsertGroup(ctx context.Context, tx pgx.Tx, g *Group) (bool, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO leaderboard_groups (id, name, invite_code, created_by, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (invite_code) DO NOTHING
	`, g.ID, g.Name, g.InviteCode, g.CreatedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxRepository) InsertMember(ctx context.Context, tx pgx.Tx, m *Member) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO leaderboard_group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, m.GroupID, m.UserID, m.Role)
	return err
}

func (r *PgxRepository) FindByInviteCode(ctx context.Context, tx pgx.Tx, code string) (*Group, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, name, invite_code, created_by, created_at
		FROM leaderboard_groups WHERE upper(invite_code) = upper($1)
	`, code)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &g, true, nil
}

func (r *PgxRepository) GetMember(ctx context.Context, tx pgx.Tx, groupID, userID string) (*Member, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT group_id, user_id, role, joined_at
		FROM leaderboard_group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	var m Member
	err := row.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

func (r *PgxRepository) RemoveMember(ctx context.Context, tx pgx.Tx, groupID, userID string) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM leaderboard_group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return err
}

func (r *PgxRepository) GroupsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Group, error) {
	rows, err := tx.Query(ctx, `
		SELECT g.id, g.name, g.invite_code, g.created_by, g.created_at
		FROM leaderboard_groups g
		JOIN leaderboard_group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PgxRepository) MemberStats(ctx context.Context, tx pgx.Tx, groupID string) ([]LeaderboardRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT m.user_id,
			coalesce(cs.display_name, ''),
			coalesce(cs.completions_count, 0),
			cs.best_days_to_premier,
			cs.avg_days_to_premier
		FROM leaderboard_group_members m
		LEFT JOIN coach_stats cs ON cs.user_id = m.user_id
		WHERE m.group_id = $1
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.CompletionsCount, &row.BestDaysToPremier, &row.AvgDaysToPremier); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
