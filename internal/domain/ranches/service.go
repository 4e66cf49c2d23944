package ranches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrLastManager: la acción dejaría al ranch sin managers.
	ErrLastManager = errors.New("a ranch must keep at least one manager")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Create crea el ranch y al creador como único manager (aceptado).
func (s *Service) Create(ctx context.Context, ownerUserID, ownerEmail, name string) (Ranch, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name = strings.TrimSpace(name)
	if ownerUserID == "" || name == "" {
		return Ranch{}, ErrInvalidInput
	}

	now := s.now()
	r := Ranch{
		ID:          uuid.NewString(),
		Name:        name,
		OwnerUserID: ownerUserID,
		CreatedAt:   now,
	}
	if err := s.repo.CreateRanch(ctx, r); err != nil {
		return Ranch{}, err
	}

	m := Member{
		ID:        uuid.NewString(),
		RanchID:   r.ID,
		UserID:    ownerUserID,
		Email:     normalizeEmail(ownerEmail),
		Role:      RoleManager,
		Accepted:  true,
		InvitedBy: ownerUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		// sin el member manager el ranch queda inusable: compensamos
		_ = s.repo.DeleteRanch(ctx, r.ID)
		return Ranch{}, err
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Ranch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ranch{}, ErrInvalidInput
	}
	return s.repo.GetRanch(ctx, id)
}

// ListMine devuelve los ranches donde el usuario es miembro aceptado.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListMembershipsByUser(ctx, userID)
}

func (s *Service) Members(ctx context.Context, ranchID string) ([]Member, error) {
	ranchID = strings.TrimSpace(ranchID)
	if ranchID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListMembersByRanch(ctx, ranchID)
}

type InviteInput struct {
	Email string
	Role  Role
}

// Invite crea una invitación pendiente con rol read o write.
// Re-invitar un email existente actualiza el rol (comportamiento del original).
func (s *Service) Invite(ctx context.Context, ranchID, actorUserID string, in InviteInput) (Member, error) {
	ranchID = strings.TrimSpace(ranchID)
	actorUserID = strings.TrimSpace(actorUserID)
	email := normalizeEmail(in.Email)

	if ranchID == "" || actorUserID == "" || email == "" {
		return Member{}, ErrInvalidInput
	}
	// Solo read/write por invitación; a manager se promueve después.
	if in.Role != RoleRead && in.Role != RoleWrite {
		return Member{}, ErrInvalidInput
	}

	if err := s.requireManager(ctx, ranchID, actorUserID); err != nil {
		return Member{}, err
	}

	now := s.now()

	existing, err := s.repo.FindMemberByEmail(ctx, ranchID, email)
	if err == nil && existing.ID != "" {
		// Invitación/miembro existente: actualizar rol, no duplicar fila.
		// La protección de último manager aplica también acá.
		if existing.Role == RoleManager {
			if err := s.ensureNotLastManager(ctx, ranchID, existing.ID); err != nil {
				return Member{}, err
			}
		}
		existing.Role = in.Role
		existing.InvitedBy = actorUserID
		existing.UpdatedAt = now
		if err := s.repo.UpdateMember(ctx, existing); err != nil {
			return Member{}, err
		}
		return existing, nil
	}

	m := Member{
		ID:        uuid.NewString(),
		RanchID:   ranchID,
		Email:     email,
		Role:      in.Role,
		Accepted:  false,
		InvitedBy: actorUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// AcceptInvite liga la identidad del usuario a la invitación pendiente
// keyed por su email.
func (s *Service) AcceptInvite(ctx context.Context, ranchID, userID, email string) (Member, error) {
	ranchID = strings.TrimSpace(ranchID)
	userID = strings.TrimSpace(userID)
	email = normalizeEmail(email)
	if ranchID == "" || userID == "" || email == "" {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.FindMemberByEmail(ctx, ranchID, email)
	if err != nil {
		return Member{}, ErrNotFound
	}

	// Idempotente
	if m.Accepted && m.UserID == userID {
		return m, nil
	}
	if m.Accepted && m.UserID != userID {
		return Member{}, ErrForbidden
	}

	m.Accepted = true
	m.UserID = userID
	m.UpdatedAt = s.now()
	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// PendingInvites lista invitaciones pendientes para el email del usuario.
func (s *Service) PendingInvites(ctx context.Context, email string) ([]Member, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListInvitesByEmail(ctx, email)
}

// UpdateRole cambia el rol de un miembro. Promover a manager siempre se
// permite; demover al último manager se rechaza antes de escribir.
func (s *Service) UpdateRole(ctx context.Context, memberID, actorUserID string, role Role) (Member, error) {
	memberID = strings.TrimSpace(memberID)
	actorUserID = strings.TrimSpace(actorUserID)
	if memberID == "" || actorUserID == "" || !role.Valid() {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return Member{}, ErrNotFound
	}

	if err := s.requireManager(ctx, m.RanchID, actorUserID); err != nil {
		return Member{}, err
	}

	if m.Role == RoleManager && role != RoleManager {
		if err := s.ensureNotLastManager(ctx, m.RanchID, m.ID); err != nil {
			return Member{}, err
		}
	}

	m.Role = role
	m.UpdatedAt = s.now()
	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Remove saca a un miembro del ranch. Mismo guard de último manager.
func (s *Service) Remove(ctx context.Context, memberID, actorUserID string) error {
	memberID = strings.TrimSpace(memberID)
	actorUserID = strings.TrimSpace(actorUserID)
	if memberID == "" || actorUserID == "" {
		return ErrInvalidInput
	}

	m, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return ErrNotFound
	}

	// Un miembro puede salirse solo; sacar a otros requiere manager.
	if m.UserID == "" || m.UserID != actorUserID {
		if err := s.requireManager(ctx, m.RanchID, actorUserID); err != nil {
			return err
		}
	}

	if m.Role == RoleManager {
		if err := s.ensureNotLastManager(ctx, m.RanchID, m.ID); err != nil {
			return err
		}
	}

	return s.repo.DeleteMember(ctx, memberID)
}

// TransferOwnership reasigna el owner del ranch: el nuevo owner queda
// manager y el anterior baja a write.
func (s *Service) TransferOwnership(ctx context.Context, ranchID, actorUserID, newOwnerMemberID string) (Ranch, error) {
	ranchID = strings.TrimSpace(ranchID)
	actorUserID = strings.TrimSpace(actorUserID)
	newOwnerMemberID = strings.TrimSpace(newOwnerMemberID)
	if ranchID == "" || actorUserID == "" || newOwnerMemberID == "" {
		return Ranch{}, ErrInvalidInput
	}

	r, err := s.repo.GetRanch(ctx, ranchID)
	if err != nil {
		return Ranch{}, ErrNotFound
	}
	if r.OwnerUserID != actorUserID {
		return Ranch{}, ErrForbidden
	}

	next, err := s.repo.GetMember(ctx, newOwnerMemberID)
	if err != nil || next.RanchID != ranchID {
		return Ranch{}, ErrNotFound
	}
	if !next.Accepted || next.UserID == "" {
		return Ranch{}, ErrInvalidInput
	}
	if next.UserID == actorUserID {
		return Ranch{}, ErrInvalidInput
	}

	now := s.now()

	// 1) el nuevo owner queda manager (primero, así el guard nunca ve cero)
	if next.Role != RoleManager {
		next.Role = RoleManager
		next.UpdatedAt = now
		if err := s.repo.UpdateMember(ctx, next); err != nil {
			return Ranch{}, err
		}
	}

	// 2) reasignar owner
	r.OwnerUserID = next.UserID
	if err := s.repo.UpdateRanch(ctx, r); err != nil {
		return Ranch{}, err
	}

	// 3) el owner anterior baja a write
	members, err := s.repo.ListMembersByRanch(ctx, ranchID)
	if err != nil {
		return r, nil // ownership ya transferido; demote best-effort
	}
	for _, m := range members {
		if m.UserID == actorUserID && m.Role == RoleManager {
			m.Role = RoleWrite
			m.UpdatedAt = now
			_ = s.repo.UpdateMember(ctx, m)
			break
		}
	}

	return r, nil
}

// Delete borra el ranch entero. Solo el owner.
func (s *Service) Delete(ctx context.Context, ranchID, actorUserID string) error {
	ranchID = strings.TrimSpace(ranchID)
	actorUserID = strings.TrimSpace(actorUserID)
	if ranchID == "" || actorUserID == "" {
		return ErrInvalidInput
	}

	r, err := s.repo.GetRanch(ctx, ranchID)
	if err != nil {
		return ErrNotFound
	}
	if r.OwnerUserID != actorUserID {
		return ErrForbidden
	}

	return s.repo.DeleteRanch(ctx, ranchID)
}

// requireManager: el actor debe ser miembro aceptado con rol manager.
func (s *Service) requireManager(ctx context.Context, ranchID, userID string) error {
	members, err := s.repo.ListMembersByRanch(ctx, ranchID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Accepted && m.UserID == userID {
			if m.Role == RoleManager {
				return nil
			}
			return ErrForbidden
		}
	}
	return ErrForbidden
}

// ensureNotLastManager rechaza la acción si, fuera de excludeMemberID,
// no queda ningún manager aceptado.
func (s *Service) ensureNotLastManager(ctx context.Context, ranchID, excludeMemberID string) error {
	members, err := s.repo.ListMembersByRanch(ctx, ranchID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.ID == excludeMemberID {
			continue
		}
		if m.Accepted && m.Role == RoleManager {
			return nil
		}
	}
	return ErrLastManager
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
