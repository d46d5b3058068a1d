package squads

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxRepository is the production Repository, grounded on the teacher's
// lock-then-branch transaction idiom used throughout game.Service.
type PgxRepository struct{}

func NewPgxRepository() *PgxRepository { return &PgxRepository{} }

func scanSquad(row pgx.Row) (*Squad, error) {
	var s Squad
	if err := row.Scan(&s.ID, &s.Name, &s.Tag, &s.Description, &s.LeaderUserID, &s.Privacy,
		&s.TotalPoints, &s.UnspentPoints, &s.Level, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	if err := row.Scan(&m.SquadID, &m.UserID, &m.Role, &m.PointsContributed, &m.Status, &m.JoinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxRepository) ActiveMembership(ctx context.Context, tx pgx.Tx, userID string) (*Member, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT squad_id, user_id, role, points_contributed, status, joined_at
		FROM squad_members WHERE user_id = $1 AND status = 'active'
	`, userID)
	m, err := scanMember(row)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (r *PgxRepository) TagTaken(ctx context.Context, tx pgx.Tx, tag string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM coaching_squads WHERE tag = $1)`, tag).Scan(&exists)
	return exists, err
}

func (r *PgxRepository) InsertSquad(ctx context.Context, tx pgx.Tx, s *Squad) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return tx.QueryRow(ctx, `
		INSERT INTO coaching_squads (id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 1, now(), now())
		RETURNING created_at, updated_at
	`, s.ID, s.Name, s.Tag, s.Description, s.LeaderUserID, s.Privacy).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *PgxRepository) InsertMember(ctx context.Context, tx pgx.Tx, m *Member) error {
	return tx.QueryRow(ctx, `
		INSERT INTO squad_members (squad_id, user_id, role, points_contributed, status, joined_at)
		VALUES ($1, $2, $3, 0, $4, now())
		RETURNING joined_at
	`, m.SquadID, m.UserID, m.Role, m.Status).Scan(&m.JoinedAt)
}

func (r *PgxRepository) InsertFacilityRows(ctx context.Context, tx pgx.Tx, squadID string) error {
	for _, ft := range AllFacilityTypes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO squad_facilities (squad_id, facility_type, level)
			VALUES ($1, $2, 0)
			ON CONFLICT (squad_id, facility_type) DO NOTHING
		`, squadID, ft); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgxRepository) LockSquad(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at
		FROM coaching_squads WHERE id = $1
		FOR UPDATE
	`, squadID)
	return scanSquad(row)
}

func (r *PgxRepository) TouchSquad(ctx context.Context, tx pgx.Tx, squadID string) error {
	_, err := tx.Exec(ctx, `UPDATE coaching_squads SET updated_at = now() WHERE id = $1`, squadID)
	return err
}

func (r *PgxRepository) GetMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT squad_id, user_id, role, points_contributed, status, joined_at
		FROM squad_members WHERE squad_id = $1 AND user_id = $2
	`, squadID, userID)
	m, err := scanMember(row)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (r *PgxRepository) LockMember(ctx context.Context, tx pgx.Tx, squadID, userID string) (*Member, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT squad_id, user_id, role, points_contributed, status, joined_at
		FROM squad_members WHERE squad_id = $1 AND user_id = $2
		FOR UPDATE
	`, squadID, userID)
	m, err := scanMember(row)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (r *PgxRepository) UpsertMemberActive(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO squad_members (squad_id, user_id, role, points_contributed, status, joined_at)
		VALUES ($1, $2, $3, 0, 'active', now())
		ON CONFLICT (squad_id, user_id) DO UPDATE
			SET status = 'active', role = EXCLUDED.role
	`, squadID, userID, role)
	return err
}

func (r *PgxRepository) SetMemberStatus(ctx context.Context, tx pgx.Tx, squadID, userID string, status MemberStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE squad_members SET status = $3 WHERE squad_id = $1 AND user_id = $2
	`, squadID, userID, status)
	return err
}

func (r *PgxRepository) SetMemberRole(ctx context.Context, tx pgx.Tx, squadID, userID string, role Role) error {
	_, err := tx.Exec(ctx, `
		UPDATE squad_members SET role = $3 WHERE squad_id = $1 AND user_id = $2
	`, squadID, userID, role)
	return err
}

func (r *PgxRepository) CountActiveMembers(ctx context.Context, tx pgx.Tx, squadID string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT count(*) FROM squad_members WHERE squad_id = $1 AND status = 'active'
	`, squadID).Scan(&n)
	return n, err
}

func (r *PgxRepository) HasOtherActiveLeaderOrCoLeader(ctx context.Context, tx pgx.Tx, squadID, excludingUserID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM squad_members
			WHERE squad_id = $1 AND user_id != $2 AND status = 'active' AND role IN ('leader', 'co_leader')
		)
	`, squadID, excludingUserID).Scan(&exists)
	return exists, err
}

func (r *PgxRepository) FindPendingJoinRequest(ctx context.Context, tx pgx.Tx, squadID, userID string) (*JoinRequest, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by
		FROM squad_join_requests
		WHERE squad_id = $1 AND user_id = $2 AND status = 'pending'
	`, squadID, userID)
	var jr JoinRequest
	err := row.Scan(&jr.ID, &jr.SquadID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.ResolvedAt, &jr.ResolvedBy)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &jr, true, nil
}

func (r *PgxRepository) InsertJoinRequest(ctx context.Context, tx pgx.Tx, jr *JoinRequest) (*JoinRequest, error) {
	if jr.ID == "" {
		jr.ID = uuid.NewString()
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO squad_join_requests (id, squad_id, user_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', now())
		RETURNING created_at
	`, jr.ID, jr.SquadID, jr.UserID).Scan(&jr.CreatedAt)
	if err != nil {
		return nil, err
	}
	jr.Status = RequestPending
	return jr, nil
}

func (r *PgxRepository) LockJoinRequest(ctx context.Context, tx pgx.Tx, requestID string) (*JoinRequest, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by
		FROM squad_join_requests WHERE id = $1
		FOR UPDATE
	`, requestID)
	var jr JoinRequest
	if err := row.Scan(&jr.ID, &jr.SquadID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.ResolvedAt, &jr.ResolvedBy); err != nil {
		return nil, err
	}
	return &jr, nil
}

func (r *PgxRepository) ResolveJoinRequest(ctx context.Context, tx pgx.Tx, requestID string, status JoinRequestStatus, resolvedBy string) error {
	_, err := tx.Exec(ctx, `
		UPDATE squad_join_requests SET status = $2, resolved_at = now(), resolved_by = $3
		WHERE id = $1
	`, requestID, status, resolvedBy)
	return err
}

func (r *PgxRepository) LockFacility(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) (*Facility, error) {
	row := tx.QueryRow(ctx, `
		SELECT squad_id, facility_type, level FROM squad_facilities
		WHERE squad_id = $1 AND facility_type = $2
		FOR UPDATE
	`, squadID, facility)
	var f Facility
	if err := row.Scan(&f.SquadID, &f.Type, &f.Level); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PgxRepository) IncrementFacilityLevel(ctx context.Context, tx pgx.Tx, squadID string, facility FacilityType) error {
	_, err := tx.Exec(ctx, `
		UPDATE squad_facilities SET level = level + 1 WHERE squad_id = $1 AND facility_type = $2
	`, squadID, facility)
	return err
}

func (r *PgxRepository) SumFacilityLevels(ctx context.Context, tx pgx.Tx, squadID string) (int, error) {
	var sum int
	err := tx.QueryRow(ctx, `
		SELECT coalesce(sum(level), 0) FROM squad_facilities WHERE squad_id = $1
	`, squadID).Scan(&sum)
	return sum, err
}

func (r *PgxRepository) AdjustSquadPoints(ctx context.Context, tx pgx.Tx, squadID string, deltaUnspent int, newLevel int) error {
	_, err := tx.Exec(ctx, `
		UPDATE coaching_squads
		SET unspent_points = unspent_points + $2, level = $3, updated_at = now()
		WHERE id = $1
	`, squadID, deltaUnspent, newLevel)
	return err
}

func (r *PgxRepository) InsertSpendTransaction(ctx context.Context, tx pgx.Tx, squadID, userID string, facility FacilityType, amount int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO squad_spend_transactions (id, squad_id, user_id, reason, points, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, uuid.NewString(), squadID, userID, facility, amount)
	return err
}

func (r *PgxRepository) Leaderboard(ctx context.Context, tx pgx.Tx, limit int) ([]Squad, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at
		FROM coaching_squads
		ORDER BY total_points DESC, level DESC, updated_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSquads(rows)
}

func (r *PgxRepository) Search(ctx context.Context, tx pgx.Tx, query string, limit int) ([]Squad, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at
		FROM coaching_squads
		WHERE name ILIKE '%' || $1 || '%' OR tag ILIKE '%' || $1 || '%'
		ORDER BY total_points DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSquads(rows)
}

func (r *PgxRepository) SquadsForUser(ctx context.Context, tx pgx.Tx, userID string) ([]Squad, error) {
	rows, err := tx.Query(ctx, `
		SELECT s.id, s.name, s.tag, s.description, s.leader_user_id, s.privacy, s.total_points, s.unspent_points, s.level, s.created_at, s.updated_at
		FROM coaching_squads s
		JOIN squad_members m ON m.squad_id = s.id
		WHERE m.user_id = $1 AND m.status = 'active'
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSquads(rows)
}

func collectSquads(rows pgx.Rows) ([]Squad, error) {
	var out []Squad
	for rows.Next() {
		s, err := scanSquad(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PgxRepository) Profile(ctx context.Context, tx pgx.Tx, squadID string) (*Squad, []Member, []Facility, error) {
	s, err := scanSquad(tx.QueryRow(ctx, `
		SELECT id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at
		FROM coaching_squads WHERE id = $1
	`, squadID))
	if err != nil {
		return nil, nil, nil, err
	}

	memberRows, err := tx.Query(ctx, `
		SELECT squad_id, user_id, role, points_contributed, status, joined_at
		FROM squad_members WHERE squad_id = $1 AND status = 'active'
		ORDER BY joined_at ASC
	`, squadID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer memberRows.Close()
	var members []Member
	for memberRows.Next() {
		m, err := scanMember(memberRows)
		if err != nil {
			return nil, nil, nil, err
		}
		members = append(members, *m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, nil, nil, err
	}

	facRows, err := tx.Query(ctx, `
		SELECT squad_id, facility_type, level FROM squad_facilities WHERE squad_id = $1
	`, squadID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer facRows.Close()
	var facilities []Facility
	for facRows.Next() {
		var f Facility
		if err := facRows.Scan(&f.SquadID, &f.Type, &f.Level); err != nil {
			return nil, nil, nil, err
		}
		facilities = append(facilities, f)
	}
	return s, members, facilities, facRows.Err()
}

func (r *PgxRepository) PendingRequests(ctx context.Context, tx pgx.Tx, squadID string) ([]JoinRequest, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by
		FROM squad_join_requests
		WHERE squad_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
	`, squadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JoinRequest
	for rows.Next() {
		var jr JoinRequest
		if err := rows.Scan(&jr.ID, &jr.SquadID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.ResolvedAt, &jr.ResolvedBy); err != nil {
			return nil, err
		}
		out = append(out, jr)
	}
	return out, rows.Err()
}

func (r *PgxRepository) Activity(ctx context.Context, tx pgx.Tx, squadID string, limit int) ([]ActivityEvent, error) {
	rows, err := tx.Query(ctx, `
		SELECT 'earned', user_id, points, reason, created_at FROM squad_point_events WHERE squad_id = $1
		UNION ALL
		SELECT 'spent', user_id, points, reason, created_at FROM squad_spend_transactions WHERE squad_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, squadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActivityEvent
	for rows.Next() {
		var e ActivityEvent
		if err := rows.Scan(&e.Kind, &e.UserID, &e.Points, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SquadID = squadID
		out = append(out, e)
	}
	return out, rows.Err()
}
