package simulator

import (
	"context"
	"testing"

	"footybrain/internal/leagues"
)

func TestResetSyncCreatesAllThreeTiersIdempotently(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.ResetSync(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(first))
	}
	for _, ts := range first {
		if !ts.NewSeasonCreated {
			t.Fatalf("tier %s: expected a fresh season on first reset-sync, got %+v", ts.Tier, ts)
		}
		if ts.CurrentMatchday != 1 {
			t.Fatalf("tier %s: expected matchday 1, got %d", ts.Tier, ts.CurrentMatchday)
		}
	}

	second, err := svc.ResetSync(ctx)
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	for i, ts := range second {
		if ts.NewSeasonCreated {
			t.Fatalf("tier %s: reset-sync must not recreate an already-active season", ts.Tier)
		}
		if ts.SeasonID != first[i].SeasonID {
			t.Fatalf("tier %s: season id changed across reset-sync calls", ts.Tier)
		}
	}
}

func TestStatusReflectsSimulatedProgress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil { // creates seasons
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("simulate-day: %v", err)
	}

	statuses, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(statuses))
	}
	for _, ts := range statuses {
		if ts.SeasonID == "" {
			t.Fatalf("tier %s: expected a season id after simulate-day", ts.Tier)
		}
		if ts.CurrentMatchday != 2 {
			t.Fatalf("tier %s: expected matchday 2 after one simulated day, got %d", ts.Tier, ts.CurrentMatchday)
		}
	}
}

func TestTableOrdersStandingsAfterSimulation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil { // creates seasons
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("simulate-day: %v", err)
	}

	rows, err := svc.Table(ctx, leagues.Championship)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != leagues.ClubsPerTier {
		t.Fatalf("expected %d rows, got %d", leagues.ClubsPerTier, len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Points() < rows[i].Points() {
			t.Fatalf("standings not sorted by points desc at index %d: %+v vs %+v", i, rows[i-1], rows[i])
		}
	}
}

func TestFixturesAndResultsSplitByPlayedStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SimulateDay(ctx); err != nil { // creates seasons
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SimulateDay(ctx); err != nil {
		t.Fatalf("simulate-day: %v", err)
	}

	results, err := svc.Results(ctx, leagues.LeagueTwo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != leagues.FixturesPerMatchday {
		t.Fatalf("expected %d played fixtures, got %d", leagues.FixturesPerMatchday, len(results))
	}

	matchday1 := 1
	scoped, err := svc.Results(ctx, leagues.LeagueTwo, &matchday1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scoped) != leagues.FixturesPerMatchday {
		t.Fatalf("expected %d played fixtures for matchday 1, got %d", leagues.FixturesPerMatchday, len(scoped))
	}

	upcoming, err := svc.Fixtures(ctx, leagues.LeagueTwo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range upcoming {
		if f.IsPlayed() {
			t.Fatalf("fixtures endpoint returned a played fixture: %+v", f)
		}
	}
}
