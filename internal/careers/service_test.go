package careers

import (
	"context"
	"testing"
	"time"

	"footybrain/internal/apperr"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(fakeTransactor{}, repo), repo
}

func TestCreatePlayerDefaults(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.CreatePlayer(context.Background(), CreateInput{PlayerID: "p1", UserID: "u1", DisplayName: "Alex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.OverallRating != 60 || p.CurrentLeague != LeagueTwo {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestCreatePlayerRequiresIdentifiers(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreatePlayer(context.Background(), CreateInput{DisplayName: "no id"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePlayerIdempotentPreservesExisting(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	rating := 75
	if _, err := svc.CreatePlayer(ctx, CreateInput{PlayerID: "p1", UserID: "u1", DisplayName: "Alex", Rating: &rating}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreatePlayer(ctx, CreateInput{PlayerID: "p1", UserID: "u1", DisplayName: "Renamed"}); err != nil {
		t.Fatalf("second create: %v", err)
	}

	p, _ := repo.LockPlayer(ctx, nil, "p1")
	if p.OverallRating != 75 {
		t.Fatalf("expected rating preserved at 75, got %d", p.OverallRating)
	}
	if p.DisplayName != "Renamed" {
		t.Fatalf("expected display name refreshed, got %q", p.DisplayName)
	}
}

func TestUpdateProgressNoopsAfterCompletion(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.SeedPlayer(Player{ID: "p1", UserID: "u1", CareerStatus: StatusCompleted, CareerStartedAt: time.Now().Add(-48 * time.Hour)})

	rating := 90
	p, err := svc.UpdatePlayerProgress(ctx, UpdateProgressInput{PlayerID: "p1", Rating: &rating})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil result for completed player, got %+v", p)
	}
}

func TestUpdateProgressRequiresAField(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdatePlayerProgress(context.Background(), UpdateProgressInput{PlayerID: "p1"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompletePlayerCareerHappyPath(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	started := time.Now().Add(-5 * 24 * time.Hour)
	repo.SeedPlayer(Player{ID: "p1", UserID: "u1", DisplayName: "Alex", CareerStatus: StatusActive, CareerStartedAt: started, CurrentLeague: Championship, OverallRating: 90})

	result, err := svc.CompletePlayerCareer(ctx, nil, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyCompleted {
		t.Fatalf("expected first completion to not be already-completed")
	}
	if result.Completion.DaysToPremier < 5 {
		t.Fatalf("days to premier = %d, want >= 5", result.Completion.DaysToPremier)
	}

	stats := repo.CoachStatsFor("u1")
	if stats.CompletionsCount != 1 {
		t.Fatalf("completions count = %d, want 1", stats.CompletionsCount)
	}
}

func TestCompletePlayerCareerIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.SeedPlayer(Player{ID: "p1", UserID: "u1", CareerStatus: StatusActive, CareerStartedAt: time.Now().Add(-24 * time.Hour)})

	first, err := svc.CompletePlayerCareer(ctx, nil, "p1")
	if err != nil || first.AlreadyCompleted {
		t.Fatalf("unexpected first completion result: %+v, err=%v", first, err)
	}

	second, err := svc.CompletePlayerCareer(ctx, nil, "p1")
	if err != nil {
		t.Fatalf("unexpected error on second completion: %v", err)
	}
	if !second.AlreadyCompleted {
		t.Fatalf("expected second completion to report already_completed")
	}

	stats := repo.CoachStatsFor("u1")
	if stats.CompletionsCount != 1 {
		t.Fatalf("completions count = %d, want exactly 1 (no duplicate credit)", stats.CompletionsCount)
	}
}

func TestCompletePlayerCareerCreditsActiveSquad(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.SeedPlayer(Player{ID: "p1", UserID: "u1", CareerStatus: StatusActive, CareerStartedAt: time.Now().Add(-24 * time.Hour)})
	repo.SeedActiveSquadMembership("u1", "squad-1")

	_, err := svc.CompletePlayerCareer(ctx, nil, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// CreditSquadForCompletion is a no-op in the fake; this test exercises
	// the code path without a database to assert against, so we only
	// assert it didn't error.
}

func TestCompletePlayerCareerMissingPlayer(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CompletePlayerCareer(context.Background(), nil, "ghost")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestDaysSinceFloorsToAtLeastOne(t *testing.T) {
	now := time.Now()
	if got := daysSince(now, now); got != 1 {
		t.Fatalf("daysSince(same instant) = %d, want 1", got)
	}
	if got := daysSince(now.Add(-90*time.Minute), now); got != 1 {
		t.Fatalf("daysSince(90 minutes) = %d, want 1 (ceil)", got)
	}
	if got := daysSince(now.Add(-50*time.Hour), now); got != 3 {
		t.Fatalf("daysSince(50 hours) = %d, want 3 (ceil)", got)
	}
}
