package entity

// Role nivel de permisos del operador.
type Role string

// Roles válidos.
const (
	RoleAdmin    Role = "admin"
	RoleOfficina Role = "officina"
	RoleSales    Role = "sales"
)

// ParseRole normaliza un rol textual; los valores desconocidos caen en el rol más restrictivo.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleOfficina, RoleSales:
		return Role(s), true
	default:
		return RoleSales, false
	}
}
