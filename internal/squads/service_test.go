package squads

import (
	"context"
	"errors"
	"testing"

	"footybrain/internal/apperr"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(fakeTransactor{}, repo), repo
}

func TestCreateSquadDefaultsAndInitializesFacilities(t *testing.T) {
	svc, repo := newTestService()
	sq, err := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "u1", Name: "Dream Team"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.Privacy != PrivacyOpen {
		t.Fatalf("default privacy = %v, want open", sq.Privacy)
	}
	if sq.Level != 1 || sq.TotalPoints != 0 || sq.UnspentPoints != 0 {
		t.Fatalf("unexpected initial squad state: %+v", sq)
	}
	_, _, facilities, err := repo.Profile(context.Background(), nil, sq.ID)
	if err != nil {
		t.Fatalf("profile error: %v", err)
	}
	if len(facilities) != 4 {
		t.Fatalf("expected 4 facility rows, got %d", len(facilities))
	}
	mem, ok, _ := repo.GetMember(context.Background(), nil, sq.ID, "u1")
	if !ok || mem.Role != RoleLeader {
		t.Fatalf("expected creator to be leader, got %+v ok=%v", mem, ok)
	}
}

func TestCreateSquadRejectsSecondActiveSquad(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "u1", Name: "First"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "u1", Name: "Second"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateSquadTagSanitizationAndUniqueness(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	sq, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "u1", Name: "First", Tag: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.Tag == nil || *sq.Tag != "ABC" {
		t.Fatalf("expected sanitized tag ABC, got %+v", sq.Tag)
	}

	_, err = svc.CreateSquad(ctx, CreateSquadInput{UserID: "u2", Name: "Second", Tag: "abc"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on duplicate tag, got %v", err)
	}

	_, err = svc.CreateSquad(ctx, CreateSquadInput{UserID: "u3", Name: "Third", Tag: "a"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for too-short tag, got %v", err)
	}
}

func seedOpenSquad(t *testing.T, svc *Service, leader string) *Squad {
	t.Helper()
	sq, err := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: leader, Name: "Squad", Privacy: PrivacyOpen})
	if err != nil {
		t.Fatalf("seed squad: %v", err)
	}
	return sq
}

func TestJoinOpenSquadHappyPath(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.JoinOpenSquad(context.Background(), "joiner", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mem, ok, _ := repo.GetMember(context.Background(), nil, sq.ID, "joiner")
	if !ok || mem.Status != MemberActive {
		t.Fatalf("expected joiner active, got %+v", mem)
	}
}

func TestJoinOpenSquadFailsWhenNotOpen(t *testing.T) {
	svc, _ := newTestService()
	sq, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader", Name: "Squad", Privacy: PrivacyClosed})
	err := svc.JoinOpenSquad(context.Background(), "joiner", sq.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRequestJoinSquadClosedIsForbidden(t *testing.T) {
	svc, _ := newTestService()
	sq, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader", Name: "Squad", Privacy: PrivacyClosed})
	_, err := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRequestJoinSquadOpenDirectlyJoins(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	jr, err := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jr != nil {
		t.Fatalf("expected nil join request for a direct join, got %+v", jr)
	}
	mem, ok, _ := repo.GetMember(context.Background(), nil, sq.ID, "joiner")
	if !ok || mem.Status != MemberActive {
		t.Fatalf("expected direct join, got %+v", mem)
	}
}

func TestRequestJoinSquadRequestModeIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	sq, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader", Name: "Squad", Privacy: PrivacyRequest})
	first, err := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same pending request returned, got %s and %s", first.ID, second.ID)
	}
}

func TestResolveSquadJoinRequestApprove(t *testing.T) {
	svc, repo := newTestService()
	sq, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader", Name: "Squad", Privacy: PrivacyRequest})
	jr, _ := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)

	resolved, err := svc.ResolveSquadJoinRequest(context.Background(), jr.ID, "leader", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != RequestApproved {
		t.Fatalf("status = %v, want approved", resolved.Status)
	}
	mem, ok, _ := repo.GetMember(context.Background(), nil, sq.ID, "joiner")
	if !ok || mem.Status != MemberActive {
		t.Fatalf("expected joiner active after approval, got %+v", mem)
	}
}

func TestResolveSquadJoinRequestRejectRequiresLeaderOrCoLeader(t *testing.T) {
	svc, _ := newTestService()
	sq, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader", Name: "Squad", Privacy: PrivacyRequest})
	_ = svc.JoinOpenSquad // no-op reference to keep imports tidy if reordered
	jr, _ := svc.RequestJoinSquad(context.Background(), "joiner", sq.ID)

	_, err := svc.ResolveSquadJoinRequest(context.Background(), jr.ID, "joiner", false)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestResolveSquadJoinRequestAutoRejectsOnJoinRequestRace(t *testing.T) {
	svc, repo := newTestService()
	s1, _ := svc.CreateSquad(context.Background(), CreateSquadInput{UserID: "leader1", Name: "S1", Privacy: PrivacyRequest})
	s2 := seedOpenSquad(t, svc, "leader2")

	jr, _ := svc.RequestJoinSquad(context.Background(), "u", s1.ID)
	if err := svc.JoinOpenSquad(context.Background(), "u", s2.ID); err != nil {
		t.Fatalf("unexpected error joining s2: %v", err)
	}

	resolved, err := svc.ResolveSquadJoinRequest(context.Background(), jr.ID, "leader1", true)
	if err == nil {
		t.Fatalf("expected an auto-reject error")
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}
	if resolved == nil || resolved.Status != RequestRejected {
		t.Fatalf("expected the request to be committed as rejected, got %+v", resolved)
	}
	// The request's rejected status must have actually committed, not
	// rolled back alongside the returned error.
	stored, err := repo.LockJoinRequest(context.Background(), nil, jr.ID)
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if stored.Status != RequestRejected {
		t.Fatalf("expected persisted status rejected, got %v", stored.Status)
	}
}

func TestLeaveSquadBlocksSoleLeaderWithOtherMembers(t *testing.T) {
	svc, _ := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.JoinOpenSquad(context.Background(), "member", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.LeaveSquad(context.Background(), "leader", sq.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLeaveSquadAllowsLeaderWithCoLeaderPresent(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.JoinOpenSquad(context.Background(), "deputy", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetMemberRole(context.Background(), "leader", sq.ID, "deputy", RoleCoLeader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.LeaveSquad(context.Background(), "leader", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mem, _, _ := repo.GetMember(context.Background(), nil, sq.ID, "leader")
	if mem.Status != MemberInactive {
		t.Fatalf("expected leader inactive, got %+v", mem)
	}
}

func TestLeaveSquadSoleMemberAlwaysAllowed(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.LeaveSquad(context.Background(), "leader", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mem, _, _ := repo.GetMember(context.Background(), nil, sq.ID, "leader")
	if mem.Status != MemberInactive {
		t.Fatalf("expected leader inactive, got %+v", mem)
	}
}

func TestUpgradeSquadFacilityArithmetic(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	repo.CreditCompletion(sq.ID, "leader", "p1") // +1/+1
	for i := 0; i < 19; i++ {
		repo.CreditCompletion(sq.ID, "leader", "p1")
	}
	updated, err := svc.UpgradeSquadFacility(context.Background(), "leader", sq.ID, FacilityTrainingEquipment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.UnspentPoints != 15 {
		t.Fatalf("unspent_points = %d, want 15", updated.UnspentPoints)
	}
	if updated.Level != 1 {
		t.Fatalf("level = %d, want 1", updated.Level)
	}

	updated, err = svc.UpgradeSquadFacility(context.Background(), "leader", sq.ID, FacilityTrainingEquipment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.UnspentPoints != 5 {
		t.Fatalf("unspent_points = %d, want 5", updated.UnspentPoints)
	}
	if updated.Level != 1 {
		t.Fatalf("level = %d, want 1", updated.Level)
	}
}

func TestUpgradeSquadFacilityRejectsInsufficientPoints(t *testing.T) {
	svc, _ := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	_, err := svc.UpgradeSquadFacility(context.Background(), "leader", sq.ID, FacilitySpa)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpgradeSquadFacilityRequiresLeaderOrCoLeader(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.JoinOpenSquad(context.Background(), "member", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.CreditCompletion(sq.ID, "leader", "p1")
	_, err := svc.UpgradeSquadFacility(context.Background(), "member", sq.ID, FacilityTrainingEquipment)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetMemberRoleOnlyLeader(t *testing.T) {
	svc, _ := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	if err := svc.JoinOpenSquad(context.Background(), "member", sq.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.SetMemberRole(context.Background(), "member", sq.ID, "member", RoleCoLeader)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetMemberRoleRejectsInvalidRole(t *testing.T) {
	svc, _ := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	err := svc.SetMemberRole(context.Background(), "leader", sq.ID, "leader", RoleLeader)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	svc, repo := newTestService()
	a := seedOpenSquad(t, svc, "a-leader")
	b := seedOpenSquad(t, svc, "b-leader")
	repo.CreditCompletion(a.ID, "a-leader", "p1")
	repo.CreditCompletion(b.ID, "b-leader", "p1")
	repo.CreditCompletion(b.ID, "b-leader", "p1")

	board, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board) != 2 || board[0].ID != b.ID {
		t.Fatalf("expected squad b first by total_points, got %+v", board)
	}
}

func TestActivityFeedMergesAndCaps(t *testing.T) {
	svc, repo := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	for i := 0; i < 5; i++ {
		repo.CreditCompletion(sq.ID, "leader", "p1")
	}
	events, err := svc.Activity(context.Background(), sq.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected feed capped at 3, got %d", len(events))
	}
}

func TestUpgradeSquadFacilityRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService()
	sq := seedOpenSquad(t, svc, "leader")
	_, err := svc.UpgradeSquadFacility(context.Background(), "leader", sq.ID, FacilityType("sauna"))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestResolveSquadJoinRequestNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ResolveSquadJoinRequest(context.Background(), "missing", "leader", true)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
