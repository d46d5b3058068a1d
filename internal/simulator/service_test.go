package simulator

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"testing"
	"time"

	"footybrain/internal/leagues"
)

func deterministicRNG() *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(42))
}

func testClubs(n int) []leagues.Club {
	clubs := make([]leagues.Club, n)
	for i := range clubs {
		clubs[i] = leagues.Club{ID: fmt.Sprintf("club-%02d", i), Name: fmt.Sprintf("Test Town %02d", i)}
	}
	return clubs
}

func newTestService(t *testing.T) (*Service, *leagues.MemoryRepository) {
	repo := leagues.NewMemoryRepository()
	for _, tier := range allTiers {
		repo.SeedClubs(tier, testClubs(leagues.ClubsPerTier))
	}
	cfg := Config{GoalModel: NewUniformGoalModel(), RetryMax: 3, RetryBase: time.Millisecond, WriteThrottle: 0}
	svc := NewService(fakeTransactor{}, repo, cfg, nil)
	return svc, repo
}

func TestSimulateDayCreatesSeasonsOnFirstRun(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.SimulateDay(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tiers) != 3 {
		t.Fatalf("expected 3 tier results, got %d", len(result.Tiers))
	}
	for _, tr := range result.Tiers {
		if !tr.NewSeasonCreated {
			t.Fatalf("tier %s: expected NewSeasonCreated on first run, got %+v", tr.Tier, tr)
		}
	}
}

func TestSimulateDaySecondCallPlaysMatchdayOne(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	result, err := svc.SimulateDay(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	for _, tr := range result.Tiers {
		if tr.Outcome != OutcomeOK {
			t.Fatalf("tier %s: expected ok outcome, got %+v", tr.Tier, tr)
		}
	}

	season, err := repo.ActiveSeason(ctx, nil, leagues.Championship)
	if err != nil || season == nil {
		t.Fatalf("expected active championship season, err=%v", err)
	}
}

func TestSimulateDayWritesRealClubNames(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}

	season, err := repo.ActiveSeason(ctx, nil, leagues.Championship)
	if err != nil || season == nil {
		t.Fatalf("expected active championship season, err=%v", err)
	}
	rows, err := repo.TeamSeasonsForSeason(ctx, nil, season.ID)
	if err != nil {
		t.Fatalf("TeamSeasonsForSeason: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected standings rows after a played matchday")
	}
	for clubID, row := range rows {
		if row.ClubName == clubID {
			t.Fatalf("club %s: expected a real name, got the id echoed back", clubID)
		}
		if row.ClubName == "" {
			t.Fatalf("club %s: expected a non-empty name", clubID)
		}
	}
}

func TestSimulateDayThirdCallPlaysMatchdayTwo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil { // creates seasons
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SimulateDay(ctx); err != nil { // plays matchday 1
		t.Fatalf("play: %v", err)
	}
	result, err := svc.SimulateDay(ctx) // should generate+play matchday 2, not short-circuit
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	for _, tr := range result.Tiers {
		if tr.Outcome != OutcomeOK || tr.Matchday != 2 {
			t.Fatalf("tier %s: expected ok at matchday 2, got %+v", tr.Tier, tr)
		}
	}
}

func TestHTTPStatusAllOKIs200(t *testing.T) {
	r := SimulateDayResult{Tiers: []TierResult{{Outcome: OutcomeOK}, {Outcome: OutcomeAlreadyPlayed}}}
	if r.HTTPStatus() != 200 {
		t.Fatalf("expected 200, got %d", r.HTTPStatus())
	}
}

func TestHTTPStatusPartialFailureIs207(t *testing.T) {
	r := SimulateDayResult{Tiers: []TierResult{{Outcome: OutcomeOK}, {Outcome: OutcomeAborted}}}
	if r.HTTPStatus() != 207 {
		t.Fatalf("expected 207, got %d", r.HTTPStatus())
	}
}

func TestPoissonGoalModelCapsAtMax(t *testing.T) {
	model := NewPoissonGoalModel(1.45, 1.15)
	rng := deterministicRNG()
	for i := 0; i < 500; i++ {
		home, away := model.Goals(rng)
		if home > 7 || away > 7 || home < 0 || away < 0 {
			t.Fatalf("goals out of range: %d-%d", home, away)
		}
	}
}
