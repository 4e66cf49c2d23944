package ranches

import "context"

// RoleOf expone el rol de un usuario dentro de un ranch como string plano.
// Se usa para evitar ciclos de imports entre módulos (cows/pastures/export
// consumen esto vía interface local, sin importar ranches).
// Devuelve "" si el usuario no es miembro aceptado.
func (s *Service) RoleOf(ctx context.Context, ranchID, userID string) (string, error) {
	members, err := s.repo.ListMembersByRanch(ctx, ranchID)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		if m.Accepted && m.UserID == userID {
			return string(m.Role), nil
		}
	}
	return "", nil
}
