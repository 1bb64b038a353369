package ports

import (
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// LeadSheetGenerator genera la ficha imprimible de una lead.
// Recibe solo las columnas que el rol puede ver; el generador no decide visibilidad.
type LeadSheetGenerator interface {
	GenerateLeadSheet(lead *entity.Lead, columns []access.Column) ([]byte, error)
}
