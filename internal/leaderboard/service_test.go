package leaderboard

import (
	"context"
	"fmt"
	"testing"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(fakeTransactor{}, repo), repo
}

func intp(v int) *int { return &v }

func TestGlobalLeaderboardCapsAt100AndReportsCallerRankBeyond(t *testing.T) {
	svc, repo := newTestService()
	for i := 0; i < 150; i++ {
		repo.SeedRow(Row{UserID: fmt.Sprintf("user-%d", i), DisplayName: fmt.Sprintf("User %d", i), CompletionsCount: 150 - i})
	}
	// user-136 sits at rank 137 (0-indexed 136 -> completions 14, rank
	// 137 once sorted descending by completions).
	caller := "user-136"

	result, err := svc.GlobalLeaderboard(context.Background(), caller, "User 136")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 100 {
		t.Fatalf("entries length = %d, want 100", len(result.Entries))
	}
	if result.TotalCoaches != 150 {
		t.Fatalf("total_coaches = %d, want 150", result.TotalCoaches)
	}
	if result.MyEntry.Rank != 137 {
		t.Fatalf("my_entry.rank = %d, want 137", result.MyEntry.Rank)
	}
	if result.MyEntry.UserID != caller {
		t.Fatalf("my_entry.user_id = %s, want %s", result.MyEntry.UserID, caller)
	}
}

func TestGlobalLeaderboardSynthesizesEntryForNewCaller(t *testing.T) {
	svc, repo := newTestService()
	repo.SeedRow(Row{UserID: "existing", DisplayName: "Existing", CompletionsCount: 5})

	result, err := svc.GlobalLeaderboard(context.Background(), "newcomer", "Newcomer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MyEntry.Rank != 2 {
		t.Fatalf("synthetic rank = %d, want 2 (total+1 before insert)", result.MyEntry.Rank)
	}
	if result.MyEntry.CompletionsCount != 0 {
		t.Fatalf("synthetic entry must be zeroed, got %+v", result.MyEntry)
	}

	// A second call must see the durable row inserted by the first.
	result2, err := svc.GlobalLeaderboard(context.Background(), "newcomer", "Newcomer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result2.TotalCoaches != 2 {
		t.Fatalf("total_coaches on second call = %d, want 2", result2.TotalCoaches)
	}
}

func TestGlobalLeaderboardComparatorOrdering(t *testing.T) {
	svc, repo := newTestService()
	repo.SeedRow(Row{UserID: "a", CompletionsCount: 3, BestDaysToPremier: intp(10)})
	repo.SeedRow(Row{UserID: "b", CompletionsCount: 3, BestDaysToPremier: intp(5)})
	repo.SeedRow(Row{UserID: "c", CompletionsCount: 3, BestDaysToPremier: nil})

	result, err := svc.GlobalLeaderboard(context.Background(), "a", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].UserID != "b" || result.Entries[1].UserID != "a" || result.Entries[2].UserID != "c" {
		t.Fatalf("unexpected ordering: %+v", result.Entries)
	}
}
