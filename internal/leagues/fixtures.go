package leagues

import "fmt"

// GenerateSchedule builds the full 46-matchday double round-robin for
// clubs using the circle method (spec.md §4.6): club[0] stays fixed,
// clubs[1:] rotate one position each round. The second half of the
// season mirrors the first with home/away reversed, and the fixed
// club's home/away assignment alternates by round parity so it doesn't
// play every game at home or away in either half.
func GenerateSchedule(clubs []string) ([][]Pairing, error) {
	if len(clubs) != ClubsPerTier {
		return nil, fmt.Errorf("leagues: need exactly %d clubs, got %d", ClubsPerTier, len(clubs))
	}

	n := len(clubs)
	rotating := make([]string, n-1)
	copy(rotating, clubs[1:])
	fixed := clubs[0]

	firstHalf := make([][]Pairing, n-1)
	for round := 0; round < n-1; round++ {
		pairings := make([]Pairing, 0, FixturesPerMatchday)

		if round%2 == 0 {
			pairings = append(pairings, Pairing{Home: fixed, Away: rotating[0]})
		} else {
			pairings = append(pairings, Pairing{Home: rotating[0], Away: fixed})
		}

		half := (n - 1) / 2
		for i := 1; i <= half; i++ {
			a := rotating[i%len(rotating)]
			b := rotating[(len(rotating)-i)%len(rotating)]
			if i%2 == 1 {
				pairings = append(pairings, Pairing{Home: a, Away: b})
			} else {
				pairings = append(pairings, Pairing{Home: b, Away: a})
			}
		}

		firstHalf[round] = pairings

		rotating = rotate(rotating)
	}

	schedule := make([][]Pairing, 0, TotalMatchdays)
	schedule = append(schedule, firstHalf...)
	for _, round := range firstHalf {
		mirrored := make([]Pairing, len(round))
		for i, p := range round {
			mirrored[i] = Pairing{Home: p.Away, Away: p.Home}
		}
		schedule = append(schedule, mirrored)
	}

	if len(schedule) != TotalMatchdays {
		return nil, fmt.Errorf("leagues: generated %d matchdays, want %d", len(schedule), TotalMatchdays)
	}
	for md, round := range schedule {
		if len(round) != FixturesPerMatchday {
			return nil, fmt.Errorf("leagues: matchday %d has %d fixtures, want %d", md+1, len(round), FixturesPerMatchday)
		}
	}
	return schedule, nil
}

// Pairing is one fixture's home/away club ids before persistence assigns
// them a season/matchday/id.
type Pairing struct {
	Home string
	Away string
}

func rotate(s []string) []string {
	out := make([]string, len(s))
	copy(out, s[1:])
	out[len(out)-1] = s[0]
	return out
}
