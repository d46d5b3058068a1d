package leagues

import (
	"fmt"
	"testing"
)

func clubIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("club-%02d", i)
	}
	return ids
}

func TestGenerateScheduleRejectsWrongClubCount(t *testing.T) {
	_, err := GenerateSchedule(clubIDs(20))
	if err == nil {
		t.Fatalf("expected error for wrong club count")
	}
}

func TestGenerateScheduleShape(t *testing.T) {
	schedule, err := GenerateSchedule(clubIDs(ClubsPerTier))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule) != TotalMatchdays {
		t.Fatalf("got %d matchdays, want %d", len(schedule), TotalMatchdays)
	}
	for md, round := range schedule {
		if len(round) != FixturesPerMatchday {
			t.Fatalf("matchday %d has %d fixtures, want %d", md+1, len(round), FixturesPerMatchday)
		}
	}
}

func TestGenerateScheduleEachClubAppearsOncePerMatchday(t *testing.T) {
	clubs := clubIDs(ClubsPerTier)
	schedule, err := GenerateSchedule(clubs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for md, round := range schedule {
		seen := map[string]bool{}
		for _, p := range round {
			if seen[p.Home] || seen[p.Away] {
				t.Fatalf("matchday %d: club appears twice: %+v", md+1, round)
			}
			seen[p.Home] = true
			seen[p.Away] = true
		}
		if len(seen) != ClubsPerTier {
			t.Fatalf("matchday %d: only %d distinct clubs appeared, want %d", md+1, len(seen), ClubsPerTier)
		}
	}
}

func TestGenerateScheduleSecondHalfMirrorsFirst(t *testing.T) {
	clubs := clubIDs(ClubsPerTier)
	schedule, err := GenerateSchedule(clubs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	half := ClubsPerTier - 1
	for round := 0; round < half; round++ {
		first := schedule[round]
		second := schedule[round+half]
		if len(first) != len(second) {
			t.Fatalf("round %d: mismatched pairing counts", round)
		}
		for i := range first {
			if first[i].Home != second[i].Away || first[i].Away != second[i].Home {
				t.Fatalf("round %d pairing %d not mirrored: %+v vs %+v", round, i, first[i], second[i])
			}
		}
	}
}

func TestGenerateScheduleEveryClubPlaysEveryOtherTwice(t *testing.T) {
	clubs := clubIDs(ClubsPerTier)
	schedule, err := GenerateSchedule(clubs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[string]int{}
	for _, round := range schedule {
		for _, p := range round {
			key := p.Home + "|" + p.Away
			counts[key]++
			reverseKey := p.Away + "|" + p.Home
			counts[reverseKey] += 0
		}
	}

	for _, a := range clubs {
		for _, b := range clubs {
			if a == b {
				continue
			}
			total := counts[a+"|"+b] + counts[b+"|"+a]
			if total != 2 {
				t.Fatalf("pair (%s,%s) met %d times, want 2", a, b, total)
			}
		}
	}
}
