package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jhoicas/calldesk-api/internal/domain"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
	"github.com/jhoicas/calldesk-api/internal/domain/repository"
)

// pageSize máximo que admite el record store por página.
const pageSize = 100

var _ repository.LeadRepository = (*LeadRepository)(nil)

// LeadRepository adaptador del record store para leads.
type LeadRepository struct {
	client *Client
}

// NewLeadRepository construye el repositorio.
func NewLeadRepository(client *Client) *LeadRepository {
	return &LeadRepository{client: client}
}

// List recorre todas las páginas (cursor offset) y concatena los registros en el orden recibido:
// creación descendente.
func (r *LeadRepository) List(ctx context.Context, filter repository.LeadFilter) ([]entity.Lead, error) {
	query := url.Values{}
	query.Set("filterByFormula", buildFormula(filter.Status, filter.Categories))
	query.Set("sort[0][field]", fieldCreated)
	query.Set("sort[0][direction]", "desc")
	query.Set("pageSize", strconv.Itoa(pageSize))

	var leads []entity.Lead
	for page := 1; ; page++ {
		var resp listResponse
		if err := r.client.do(ctx, http.MethodGet, r.client.tableURL(""), query, nil, &resp); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("airtable: tabla %q no encontrada: %w", r.client.cfg.Table, domain.ErrUpstream)
			}
			return nil, fmt.Errorf("listar leads (página %d): %w", page, err)
		}
		for _, rec := range resp.Records {
			leads = append(leads, toLead(rec))
		}
		if resp.Offset == "" {
			break
		}
		query.Set("offset", resp.Offset)
	}

	r.client.log.Debug().Int("leads", len(leads)).Str("status", string(filter.Status)).Msg("leads recuperadas")
	return leads, nil
}

// GetByID devuelve domain.ErrNotFound si el registro no existe.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	var rec record
	if err := r.client.do(ctx, http.MethodGet, r.client.tableURL(id), nil, nil, &rec); err != nil {
		return nil, fmt.Errorf("obtener lead %s: %w", id, err)
	}
	lead := toLead(rec)
	return &lead, nil
}

// Update escribe solo las columnas que el record store admite; el resto se descarta.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	fields, dropped := patchFields(patch)
	if len(dropped) > 0 {
		r.client.log.Debug().Str("lead", id).Strs("campos", dropped).Msg("campos no escribibles descartados")
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	var rec record
	if err := r.client.do(ctx, http.MethodPatch, r.client.tableURL(id), nil, updateRequest{Fields: fields}, &rec); err != nil {
		return nil, fmt.Errorf("actualizar lead %s: %w", id, err)
	}
	lead := toLead(rec)
	return &lead, nil
}
