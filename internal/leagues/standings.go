package leagues

import "sort"

// SortStandings orders rows by points desc, goal difference desc, goals
// for desc, name asc — spec.md §4.6.
func SortStandings(rows []TeamSeason) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.ClubName < b.ClubName
	})
}

// MatchdayDelta is the per-club aggregated change from one batch of
// simulated fixtures, applied to TeamSeason via ApplyDelta.
type MatchdayDelta struct {
	ClubID       string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
}

// DeltasFromResults aggregates one matchday's played fixtures into a
// per-club delta map, used by both the simulator (before writing
// TeamSeason) and tests.
func DeltasFromResults(fixtures []Fixture) map[string]*MatchdayDelta {
	deltas := map[string]*MatchdayDelta{}
	get := func(clubID string) *MatchdayDelta {
		d, ok := deltas[clubID]
		if !ok {
			d = &MatchdayDelta{ClubID: clubID}
			deltas[clubID] = d
		}
		return d
	}

	for _, f := range fixtures {
		if f.HomeGoals == nil || f.AwayGoals == nil {
			continue
		}
		home, away := get(f.HomeClubID), get(f.AwayClubID)
		hg, ag := *f.HomeGoals, *f.AwayGoals

		home.Played++
		away.Played++
		home.GoalsFor += hg
		home.GoalsAgainst += ag
		away.GoalsFor += ag
		away.GoalsAgainst += hg

		switch {
		case hg > ag:
			home.Won++
			away.Lost++
		case hg < ag:
			away.Won++
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
		}
	}
	return deltas
}

// ApplyDelta folds d into ts in place.
func ApplyDelta(ts *TeamSeason, d *MatchdayDelta) {
	ts.Played += d.Played
	ts.Won += d.Won
	ts.Drawn += d.Drawn
	ts.Lost += d.Lost
	ts.GoalsFor += d.GoalsFor
	ts.GoalsAgainst += d.GoalsAgainst
}
