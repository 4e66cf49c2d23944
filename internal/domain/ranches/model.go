package ranches

import "time"

// Role define el nivel de acceso de un miembro dentro de un ranch.
// @Enum manager, write, read
type Role string

const (
	RoleManager Role = "manager"
	RoleWrite   Role = "write"
	RoleRead    Role = "read"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleWrite, RoleRead:
		return true
	}
	return false
}

// CanEditHerd: manager y write pueden mutar el ganado; read solo mira.
func (r Role) CanEditHerd() bool {
	return r == RoleManager || r == RoleWrite
}

// Ranch es el workspace/tenant: dueño del ganado, miembros y configuración.
type Ranch struct {
	ID          string
	Name        string
	OwnerUserID string

	CreatedAt time.Time
}

// Member pertenece a exactamente un ranch. Mientras la invitación está
// pendiente (Accepted=false) se identifica solo por email; al aceptar se
// liga el UserID.
type Member struct {
	ID      string
	RanchID string

	UserID string // vacío hasta aceptar la invitación
	Email  string
	Role   Role

	Accepted  bool
	InvitedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership es la vista "mis ranches": ranch + rol propio.
type Membership struct {
	Ranch Ranch
	Role  Role
}
