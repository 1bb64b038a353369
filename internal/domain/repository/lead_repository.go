package repository

import (
	"context"

	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// LeadFilter filtros que el record store aplica del lado servidor.
type LeadFilter struct {
	Status     entity.Status     // vacío = cualquier estado
	Categories []entity.Category // nil = todas las categorías
}

// LeadRepository define el puerto hacia el record store externo de leads.
// GetByID y Update devuelven domain.ErrNotFound si el registro no existe;
// cualquier otro error significa que el store no es alcanzable o respondió con error.
type LeadRepository interface {
	List(ctx context.Context, filter LeadFilter) ([]entity.Lead, error)
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error)
}
