package ranches

import "context"

type Repository interface {
	CreateRanch(ctx context.Context, r Ranch) error
	GetRanch(ctx context.Context, id string) (Ranch, error)
	UpdateRanch(ctx context.Context, r Ranch) error

	// DeleteRanch borra el ranch y cascadea a members/cows/tags/notes/
	// pastures/breeds/medical (el store es responsable del cascade).
	DeleteRanch(ctx context.Context, id string) error

	CreateMember(ctx context.Context, m Member) error
	UpdateMember(ctx context.Context, m Member) error
	DeleteMember(ctx context.Context, id string) error
	GetMember(ctx context.Context, id string) (Member, error)
	ListMembersByRanch(ctx context.Context, ranchID string) ([]Member, error)

	// FindMemberByEmail busca un miembro (aceptado o no) por email normalizado.
	FindMemberByEmail(ctx context.Context, ranchID, email string) (Member, error)

	// ListMembershipsByUser devuelve memberships aceptadas del usuario.
	ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)

	// ListInvitesByEmail devuelve invitaciones pendientes (Accepted=false).
	ListInvitesByEmail(ctx context.Context, email string) ([]Member, error)
}
