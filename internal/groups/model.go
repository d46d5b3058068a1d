// Package groups implements private friend groups: invite-code creation,
// idempotent joining, and a member-scoped leaderboard view.
package groups

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type Member struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// LeaderboardRow is one ranked member, grounded on the teacher's
// LeaderboardRow{Rank, Username, InviteCode} shape.
type LeaderboardRow struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"user_id"`
	DisplayName       string `json:"display_name"`
	CompletionsCount  int    `json:"completions_count"`
	BestDaysToPremier *int   `json:"best_days_to_premier,omitempty"`
	AvgDaysToPremier  *int   `json:"avg_days_to_premier,omitempty"`
}
