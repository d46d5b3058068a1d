// Package careers owns the Player/CareerCompletion/CoachStats lifecycle:
// registration, progress pushes, and the atomic completion pipeline.
package careers

import (
	"time"
)

type League string

const (
	LeagueTwo     League = "league_two"
	LeagueOne     League = "league_one"
	Championship  League = "championship"
)

type CareerStatus string

const (
	StatusActive    CareerStatus = "active"
	StatusCompleted CareerStatus = "completed"
)

// Player is the externally-identified coaching career record.
type Player struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	DisplayName       string     `json:"display_name"`
	OverallRating     int        `json:"overall_rating"`
	CurrentLeague     League     `json:"current_league"`
	CareerStatus      CareerStatus `json:"career_status"`
	CareerStartedAt   time.Time  `json:"career_started_at"`
	CareerCompletedAt *time.Time `json:"career_completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CareerCompletion records a player's transition to completed exactly
// once; the unique constraint on PlayerID is the physical double-write
// guard the rest of the pipeline relies on.
type CareerCompletion struct {
	ID            string    `json:"id"`
	PlayerID      string    `json:"player_id"`
	UserID        string    `json:"user_id"`
	DaysToPremier int       `json:"days_to_premier"`
	CompletedAt   time.Time `json:"completed_at"`
}

// CoachStats is the per-coach aggregate the leaderboard ranks on.
type CoachStats struct {
	UserID            string `json:"user_id"`
	DisplayName       string `json:"display_name"`
	CompletionsCount  int    `json:"completions_count"`
	BestDaysToPremier *int   `json:"best_days_to_premier,omitempty"`
	AvgDaysToPremier  *int   `json:"avg_days_to_premier,omitempty"`
	TotalDaysSum      int64  `json:"total_days_sum"`
}

// CompletionResult reports the outcome of CompletePlayerCareer.
type CompletionResult struct {
	AlreadyCompleted bool              `json:"already_completed"`
	Completion       *CareerCompletion `json:"completion,omitempty"`
}

func defaultRating() int    { return 60 }
func defaultLeague() League { return LeagueTwo }
