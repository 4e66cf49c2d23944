package ranches

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	ranches map[string]Ranch
	members map[string]Member

	// one-shot: el próximo CreateMember falla (para la compensación)
	failNextCreateMember bool
}

func newTestRepo() *testRepo {
	return &testRepo{
		ranches: map[string]Ranch{},
		members: map[string]Member{},
	}
}

func (r *testRepo) CreateRanch(ctx context.Context, ra Ranch) error {
	r.ranches[ra.ID] = ra
	return nil
}

func (r *testRepo) GetRanch(ctx context.Context, id string) (Ranch, error) {
	ra, ok := r.ranches[id]
	if !ok {
		return Ranch{}, ErrNotFound
	}
	return ra, nil
}

func (r *testRepo) UpdateRanch(ctx context.Context, ra Ranch) error {
	if _, ok := r.ranches[ra.ID]; !ok {
		return ErrNotFound
	}
	r.ranches[ra.ID] = ra
	return nil
}

func (r *testRepo) DeleteRanch(ctx context.Context, id string) error {
	if _, ok := r.ranches[id]; !ok {
		return ErrNotFound
	}
	for mid, m := range r.members {
		if m.RanchID == id {
			delete(r.members, mid)
		}
	}
	delete(r.ranches, id)
	return nil
}

func (r *testRepo) CreateMember(ctx context.Context, m Member) error {
	if r.failNextCreateMember {
		r.failNextCreateMember = false
		return errors.New("repo: insert failed")
	}
	r.members[m.ID] = m
	return nil
}

func (r *testRepo) UpdateMember(ctx context.Context, m Member) error {
	if _, ok := r.members[m.ID]; !ok {
		return ErrNotFound
	}
	r.members[m.ID] = m
	return nil
}

func (r *testRepo) DeleteMember(ctx context.Context, id string) error {
	if _, ok := r.members[id]; !ok {
		return ErrNotFound
	}
	delete(r.members, id)
	return nil
}

func (r *testRepo) GetMember(ctx context.Context, id string) (Member, error) {
	m, ok := r.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListMembersByRanch(ctx context.Context, ranchID string) ([]Member, error) {
	out := make([]Member, 0)
	for _, m := range r.members {
		if m.RanchID == ranchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) FindMemberByEmail(ctx context.Context, ranchID, email string) (Member, error) {
	for _, m := range r.members {
		if m.RanchID == ranchID && strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return Member{}, ErrNotFound
}

func (r *testRepo) ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error) {
	out := make([]Membership, 0)
	for _, m := range r.members {
		if m.UserID != userID || !m.Accepted {
			continue
		}
		ra, ok := r.ranches[m.RanchID]
		if !ok {
			continue
		}
		out = append(out, Membership{Ranch: ra, Role: m.Role})
	}
	return out, nil
}

func (r *testRepo) ListInvitesByEmail(ctx context.Context, email string) ([]Member, error) {
	out := make([]Member, 0)
	for _, m := range r.members {
		if !m.Accepted && strings.EqualFold(m.Email, email) {
			out = append(out, m)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func mustCreateRanch(t *testing.T, svc *Service) Ranch {
	t.Helper()
	ra, err := svc.Create(context.Background(), "owner-1", "Owner@Ranch.com", "Circle K")
	if err != nil {
		t.Fatalf("Create ranch error: %v", err)
	}
	return ra
}

func TestService_Create_OwnerBecomesSoleManager(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	ra := mustCreateRanch(t, svc)

	members, _ := svc.Members(context.Background(), ra.ID)
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	m := members[0]
	if m.Role != RoleManager || !m.Accepted || m.UserID != "owner-1" {
		t.Fatalf("expected accepted manager owner, got %#v", m)
	}
	if m.Email != "owner@ranch.com" {
		t.Fatalf("expected normalized email, got %q", m.Email)
	}
}

func TestService_Create_CompensatesWhenMemberInsertFails(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	repo.failNextCreateMember = true
	_, err := svc.Create(context.Background(), "owner-1", "o@r.com", "Circle K")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.ranches) != 0 {
		t.Fatalf("expected ranch row compensated away, got %d", len(repo.ranches))
	}
}

func TestService_Invite_OnlyReadOrWrite(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	_, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com",
		Role:  RoleManager,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput inviting as manager, got %v", err)
	}
}

func TestService_Invite_RequiresManager(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	_, err := svc.Invite(context.Background(), ra.ID, "stranger", InviteInput{
		Email: "hand@ranch.com",
		Role:  RoleRead,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Invite_ReinviteUpdatesRole(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	m1, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "Hand@Ranch.com",
		Role:  RoleRead,
	})
	if err != nil {
		t.Fatalf("Invite #1 error: %v", err)
	}

	m2, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com",
		Role:  RoleWrite,
	})
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}
	if m2.ID != m1.ID {
		t.Fatalf("expected same member row on re-invite, got %s vs %s", m1.ID, m2.ID)
	}
	if m2.Role != RoleWrite {
		t.Fatalf("expected role updated to write, got %s", m2.Role)
	}
}

func TestService_AcceptInvite_BindsUser_AndIsIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com",
		Role:  RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	m, err := svc.AcceptInvite(context.Background(), ra.ID, "hand-1", "Hand@Ranch.com")
	if err != nil {
		t.Fatalf("AcceptInvite error: %v", err)
	}
	if !m.Accepted || m.UserID != "hand-1" {
		t.Fatalf("expected bound accepted member, got %#v", m)
	}

	// idempotente para el mismo usuario
	if _, err := svc.AcceptInvite(context.Background(), ra.ID, "hand-1", "hand@ranch.com"); err != nil {
		t.Fatalf("expected idempotent accept, got %v", err)
	}

	// otro usuario con el mismo email => forbidden
	if _, err := svc.AcceptInvite(context.Background(), ra.ID, "impostor", "hand@ranch.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user, got %v", err)
	}
}

func TestService_UpdateRole_LastManagerGuard(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	members, _ := svc.Members(context.Background(), ra.ID)
	ownerMember := members[0]

	// el único manager no puede bajarse a sí mismo
	_, err := svc.UpdateRole(context.Background(), ownerMember.ID, "owner-1", RoleWrite)
	if !errors.Is(err, ErrLastManager) {
		t.Fatalf("expected ErrLastManager, got %v", err)
	}

	// con un segundo manager aceptado, sí puede
	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com", Role: RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	hand, err := svc.AcceptInvite(context.Background(), ra.ID, "hand-1", "hand@ranch.com")
	if err != nil {
		t.Fatalf("AcceptInvite error: %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), hand.ID, "owner-1", RoleManager); err != nil {
		t.Fatalf("promote error: %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), ownerMember.ID, "owner-1", RoleWrite); err != nil {
		t.Fatalf("expected demote allowed with second manager, got %v", err)
	}
}

func TestService_Remove_SelfAllowed_LastManagerBlocked(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com", Role: RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	hand, err := svc.AcceptInvite(context.Background(), ra.ID, "hand-1", "hand@ranch.com")
	if err != nil {
		t.Fatalf("AcceptInvite error: %v", err)
	}

	// salirse solo, sin ser manager
	if err := svc.Remove(context.Background(), hand.ID, "hand-1"); err != nil {
		t.Fatalf("expected self-removal allowed, got %v", err)
	}

	// el único manager no puede salirse
	members, _ := svc.Members(context.Background(), ra.ID)
	if err := svc.Remove(context.Background(), members[0].ID, "owner-1"); !errors.Is(err, ErrLastManager) {
		t.Fatalf("expected ErrLastManager, got %v", err)
	}
}

func TestService_Remove_OthersRequireManager(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "a@ranch.com", Role: RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	a, _ := svc.AcceptInvite(context.Background(), ra.ID, "user-a", "a@ranch.com")

	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "b@ranch.com", Role: RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	b, _ := svc.AcceptInvite(context.Background(), ra.ID, "user-b", "b@ranch.com")

	if err := svc.Remove(context.Background(), a.ID, "user-b"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden removing peer, got %v", err)
	}
	_ = b
}

func TestService_TransferOwnership(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	if _, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com", Role: RoleWrite,
	}); err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	hand, err := svc.AcceptInvite(context.Background(), ra.ID, "hand-1", "hand@ranch.com")
	if err != nil {
		t.Fatalf("AcceptInvite error: %v", err)
	}

	got, err := svc.TransferOwnership(context.Background(), ra.ID, "owner-1", hand.ID)
	if err != nil {
		t.Fatalf("TransferOwnership error: %v", err)
	}
	if got.OwnerUserID != "hand-1" {
		t.Fatalf("expected new owner hand-1, got %s", got.OwnerUserID)
	}

	members, _ := svc.Members(context.Background(), ra.ID)
	roles := map[string]Role{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	if roles["hand-1"] != RoleManager {
		t.Fatalf("expected new owner promoted to manager, got %s", roles["hand-1"])
	}
	if roles["owner-1"] != RoleWrite {
		t.Fatalf("expected previous owner demoted to write, got %s", roles["owner-1"])
	}
}

func TestService_TransferOwnership_RejectsPendingInvite(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	pending, err := svc.Invite(context.Background(), ra.ID, "owner-1", InviteInput{
		Email: "hand@ranch.com", Role: RoleWrite,
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	_, err = svc.TransferOwnership(context.Background(), ra.ID, "owner-1", pending.ID)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unaccepted member, got %v", err)
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	if err := svc.Delete(context.Background(), ra.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), ra.ID, "owner-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(repo.ranches) != 0 || len(repo.members) != 0 {
		t.Fatalf("expected ranch and members gone")
	}
}

func TestService_RoleOf(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ra := mustCreateRanch(t, svc)

	role, err := svc.RoleOf(context.Background(), ra.ID, "owner-1")
	if err != nil {
		t.Fatalf("RoleOf error: %v", err)
	}
	if role != string(RoleManager) {
		t.Fatalf("expected manager, got %q", role)
	}

	role, err = svc.RoleOf(context.Background(), ra.ID, "stranger")
	if err != nil {
		t.Fatalf("RoleOf error: %v", err)
	}
	if role != "" {
		t.Fatalf("expected empty role for non-member, got %q", role)
	}
}
