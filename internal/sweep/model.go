// Package sweep runs the every-fourth-UTC-day promotion/completion pass
// over active players, serialized by a Postgres advisory lock.
package sweep

import (
	"time"

	"footybrain/internal/careers"
)

const millisPerDay = 86_400_000

// UTCDay returns the day number used for the 4-day cadence check.
func UTCDay(t time.Time) int64 {
	return t.UnixMilli() / millisPerDay
}

// IsScheduledDay reports whether day is a day the sweep should run on.
func IsScheduledDay(day int64) bool {
	return day%4 == 0
}

// State mirrors the SweepState singleton (id=1).
type State struct {
	LastSweepUTCDay *int64     `json:"last_sweep_utc_day,omitempty"`
	LastSweepAt     *time.Time `json:"last_sweep_at,omitempty"`
	RunCount        int64      `json:"run_count"`
}

// promotionThreshold maps a league to the rating required to move on —
// the same table the completion classifier reads for the championship
// case.
func promotionThreshold(l careers.League) int {
	switch l {
	case careers.LeagueTwo:
		return 70
	case careers.LeagueOne:
		return 78
	case careers.Championship:
		return 86
	default:
		return 0
	}
}

func nextLeague(l careers.League) (careers.League, bool) {
	switch l {
	case careers.LeagueTwo:
		return careers.LeagueOne, true
	case careers.LeagueOne:
		return careers.Championship, true
	default:
		return "", false
	}
}

// Candidate is one active player classified by Phase 3.
type Candidate struct {
	PlayerID      string         `json:"player_id"`
	UserID        string         `json:"user_id"`
	CurrentLeague careers.League `json:"current_league"`
	Rating        int            `json:"rating"`
}

// Result is the capped summary returned by Run, per spec.md §4.4 step 6.
type Result struct {
	AlreadyRanToday bool `json:"already_ran_today"`
	NotScheduled    bool `json:"not_scheduled"`

	TotalActive int                 `json:"total_active"`
	Promotions  []Candidate         `json:"promotions"` // capped at 100
	Skips       []Candidate         `json:"skips"`       // capped at 100
	Completions []CompletionOutcome `json:"completions"`
	Errors      []PlayerError       `json:"errors"`
}

type CompletionOutcome struct {
	PlayerID         string `json:"player_id"`
	AlreadyCompleted bool   `json:"already_completed"`
}

type PlayerError struct {
	PlayerID string `json:"player_id"`
	Err      string `json:"error"`
}

// Status is the read-only view behind the public status endpoint.
type Status struct {
	LastSweepUTCDay  *int64     `json:"last_sweep_utc_day,omitempty"`
	LastSweepAt      *time.Time `json:"last_sweep_at,omitempty"`
	RunCount         int64      `json:"run_count"`
	TodayIsScheduled bool       `json:"today_is_scheduled"`
}

const capLimit = 100

func capCandidates(c []Candidate) []Candidate {
	if len(c) <= capLimit {
		return c
	}
	return c[:capLimit]
}
