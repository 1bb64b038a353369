// Package access concentra las decisiones de visibilidad por rol: qué rol tiene cada
// identidad, qué categorías de lead puede ver y qué columnas se muestran en la tabla.
//
// Todo el paquete son funciones puras sobre tablas de datos; no hay I/O ni estado oculto.
package access

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// RoleTable mapeo email -> rol. Las claves se normalizan con normalizeEmail.
type RoleTable map[string]entity.Role

// CategoryTable categorías permitidas por rol. Un valor nil significa "sin restricción".
type CategoryTable map[entity.Role][]entity.Category

// DefaultRoleTable cuentas conocidas en el arranque; USER_ROLES las amplía o sustituye.
var DefaultRoleTable = RoleTable{
	"direzione@calldesk.example": entity.RoleAdmin,
	"officina@calldesk.example":  entity.RoleOfficina,
	"vendite@calldesk.example":   entity.RoleSales,
}

// DefaultCategoryTable permisos por rol.
var DefaultCategoryTable = CategoryTable{
	entity.RoleAdmin:    nil,
	entity.RoleOfficina: {entity.CategoryService, entity.CategoryParts},
	entity.RoleSales:    {entity.CategorySales},
}

// Resolver resuelve rol y categorías permitidas a partir del email autenticado.
type Resolver struct {
	roles      RoleTable
	categories CategoryTable
}

// NewResolver construye el resolver con la tabla por defecto más los overrides (que tienen prioridad).
func NewResolver(overrides RoleTable) *Resolver {
	roles := make(RoleTable, len(DefaultRoleTable)+len(overrides))
	for email, role := range DefaultRoleTable {
		roles[normalizeEmail(email)] = role
	}
	for email, role := range overrides {
		roles[normalizeEmail(email)] = role
	}
	return &Resolver{roles: roles, categories: DefaultCategoryTable}
}

// Role devuelve el rol del email. Email vacío o desconocido -> sales.
func (r *Resolver) Role(email string) entity.Role {
	key := normalizeEmail(email)
	if key == "" {
		return entity.RoleSales
	}
	if role, ok := r.roles[key]; ok {
		return role
	}
	return entity.RoleSales
}

// IsAdmin indica si el email tiene rol admin.
func (r *Resolver) IsAdmin(email string) bool {
	return r.Role(email) == entity.RoleAdmin
}

// AllowedCategories devuelve las categorías visibles para el email, o nil si puede ver todo (admin).
func (r *Resolver) AllowedCategories(email string) []entity.Category {
	return r.CategoriesFor(r.Role(email))
}

// CategoriesFor devuelve una copia de las categorías del rol; nil = sin restricción.
func (r *Resolver) CategoriesFor(role entity.Role) []entity.Category {
	cats, ok := r.categories[role]
	if !ok {
		cats = r.categories[entity.RoleSales]
	}
	if cats == nil {
		return nil
	}
	out := make([]entity.Category, len(cats))
	copy(out, cats)
	return out
}

// CanView indica si una lead es visible con las categorías permitidas.
// Las leads sin categoría quedan visibles para todos los roles.
func CanView(lead entity.Lead, allowed []entity.Category) bool {
	if allowed == nil || lead.Category == "" {
		return true
	}
	return containsCategory(allowed, lead.Category)
}

// FilterLeads re-filtra en el servidor por categoría aunque el store ya lo haya hecho.
// El control de acceso nunca depende solo del filtro del store.
func FilterLeads(leads []entity.Lead, allowed []entity.Category) []entity.Lead {
	if allowed == nil {
		return leads
	}
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if CanView(l, allowed) {
			out = append(out, l)
		}
	}
	return out
}

// ParseRoleTable interpreta "email:rol,email:rol" (formato de USER_ROLES).
func ParseRoleTable(raw string) (RoleTable, error) {
	table := RoleTable{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, roleName, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(email) == "" {
			return nil, fmt.Errorf("USER_ROLES: entrada inválida %q", entry)
		}
		role, known := entity.ParseRole(strings.TrimSpace(roleName))
		if !known {
			return nil, fmt.Errorf("USER_ROLES: rol desconocido %q para %s", roleName, email)
		}
		table[normalizeEmail(email)] = role
	}
	return table, nil
}

func normalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

func containsCategory(list []entity.Category, c entity.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
