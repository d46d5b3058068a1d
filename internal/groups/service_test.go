package groups

import (
	"context"
	"strings"
	"testing"

	"footybrain/internal/apperr"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(fakeTransactor{}, repo), repo
}

func TestCreateGroupAddsCreatorAsAdmin(t *testing.T) {
	svc, repo := newTestService()
	g, err := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "u1", Name: "Squad Mates"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.InviteCode) != inviteCodeLen {
		t.Fatalf("invite code length = %d, want %d", len(g.InviteCode), inviteCodeLen)
	}
	if g.InviteCode != strings.ToUpper(g.InviteCode) {
		t.Fatalf("invite code must be uppercase, got %q", g.InviteCode)
	}
	mem, ok, _ := repo.GetMember(context.Background(), nil, g.ID, "u1")
	if !ok || mem.Role != RoleAdmin {
		t.Fatalf("expected creator admin, got %+v ok=%v", mem, ok)
	}
}

func TestCreateGroupRequiresFields(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "", Name: "x"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestJoinGroupCaseInsensitiveAndIdempotent(t *testing.T) {
	svc, _ := newTestService()
	g, _ := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "owner", Name: "Squad"})

	res, err := svc.JoinGroup(context.Background(), "joiner", strings.ToLower(g.InviteCode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AlreadyMember {
		t.Fatalf("expected first join to not be already_member")
	}

	res2, err := svc.JoinGroup(context.Background(), "joiner", g.InviteCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res2.AlreadyMember {
		t.Fatalf("expected second join to report already_member")
	}
}

func TestJoinGroupUnknownInviteCodeNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.JoinGroup(context.Background(), "u1", "ZZZZZZ")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLeaveGroupRemovesMembership(t *testing.T) {
	svc, repo := newTestService()
	g, _ := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "owner", Name: "Squad"})
	if err := svc.LeaveGroup(context.Background(), "owner", g.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, _ := repo.GetMember(context.Background(), nil, g.ID, "owner")
	if ok {
		t.Fatalf("expected membership removed")
	}
}

func TestLeaveGroupNotAMemberIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	g, _ := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "owner", Name: "Squad"})
	err := svc.LeaveGroup(context.Background(), "stranger", g.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetGroupLeaderboardRequiresMembership(t *testing.T) {
	svc, _ := newTestService()
	g, _ := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "owner", Name: "Squad"})
	_, err := svc.GetGroupLeaderboard(context.Background(), "stranger", g.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetGroupLeaderboardOrdering(t *testing.T) {
	svc, repo := newTestService()
	g, _ := svc.CreateGroup(context.Background(), CreateGroupInput{UserID: "owner", Name: "Squad"})
	if _, err := svc.JoinGroup(context.Background(), "fast", g.InviteCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.JoinGroup(context.Background(), "norecord", g.InviteCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	best3 := 3
	best5 := 5
	repo.SeedStats("owner", "Owner", 2, &best5, &best5)
	repo.SeedStats("fast", "Fast", 2, &best3, &best3)
	// "norecord" has no seeded stats: zero completions, nil days.

	rows, err := svc.GetGroupLeaderboard(context.Background(), "owner", g.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].UserID != "fast" || rows[0].Rank != 1 {
		t.Fatalf("expected fast ranked first on lower best_days_to_premier, got %+v", rows[0])
	}
	if rows[1].UserID != "owner" || rows[1].Rank != 2 {
		t.Fatalf("expected owner ranked second, got %+v", rows[1])
	}
	if rows[2].UserID != "norecord" || rows[2].Rank != 3 {
		t.Fatalf("expected norecord ranked last (zero completions), got %+v", rows[2])
	}
}

func TestCompareNullableAscNilsLast(t *testing.T) {
	five := 5
	if compareNullableAsc(nil, &five) != 1 {
		t.Fatalf("expected nil to sort after a value")
	}
	if compareNullableAsc(&five, nil) != -1 {
		t.Fatalf("expected a value to sort before nil")
	}
	if compareNullableAsc(nil, nil) != 0 {
		t.Fatalf("expected nil == nil")
	}
}
