// Package leaderboard ranks coaches globally with a single windowed
// query, always surfacing the caller's own row even past the top 100.
package leaderboard

type Row struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"user_id"`
	DisplayName       string `json:"display_name"`
	CompletionsCount  int    `json:"completions_count"`
	BestDaysToPremier *int   `json:"best_days_to_premier,omitempty"`
	AvgDaysToPremier  *int   `json:"avg_days_to_premier,omitempty"`
}

// Result is the payload behind GET /api/leaderboard/global.
type Result struct {
	Entries      []Row `json:"entries"` // top 100, rank ascending
	MyEntry      Row   `json:"my_entry"`
	TotalCoaches int   `json:"total_coaches"`
}
