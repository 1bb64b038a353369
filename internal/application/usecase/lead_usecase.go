package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
	"github.com/jhoicas/calldesk-api/internal/domain/repository"
)

const (
	minNameLen  = 2
	minPhoneLen = 5
)

// LeadUseCase casos de uso de leads. Aplica los permisos por categoría en el servidor
// aunque el record store ya haya filtrado.
type LeadUseCase struct {
	repo     repository.LeadRepository
	resolver *access.Resolver
	sheets   ports.LeadSheetGenerator
	log      zerolog.Logger
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(repo repository.LeadRepository, resolver *access.Resolver, sheets ports.LeadSheetGenerator, log zerolog.Logger) *LeadUseCase {
	return &LeadUseCase{repo: repo, resolver: resolver, sheets: sheets, log: log.With().Str("component", "leads").Logger()}
}

func invalid(field, msg string) error {
	return &domain.ValidationError{Field: field, Message: msg}
}

// List devuelve las leads visibles para el email. Con view vacío o "all" se ignora el estado.
func (uc *LeadUseCase) List(ctx context.Context, email, status, view string) ([]entity.Lead, error) {
	allowed := uc.resolver.AllowedCategories(email)
	filter := repository.LeadFilter{Categories: allowed}
	if view != "" && view != dto.ViewAll {
		filter.Status = entity.Status(strings.TrimSpace(status))
	}

	leads, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	visible := access.FilterLeads(leads, allowed)
	if len(visible) != len(leads) {
		uc.log.Warn().
			Str("email", email).
			Int("recibidas", len(leads)).
			Int("visibles", len(visible)).
			Msg("el record store devolvió leads fuera de las categorías permitidas")
	}
	return visible, nil
}

// Get devuelve la lead. Con identidad presente, una categoría no permitida da domain.ErrForbidden.
func (uc *LeadUseCase) Get(ctx context.Context, id, email string) (*entity.Lead, error) {
	lead, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != "" && !access.CanView(*lead, uc.resolver.AllowedCategories(email)) {
		uc.log.Warn().Str("email", email).Str("lead", id).Str("categoria", string(lead.Category)).Msg("acceso denegado a lead")
		return nil, domain.ErrForbidden
	}
	return lead, nil
}

func (uc *LeadUseCase) update(ctx context.Context, id, email string, patch entity.LeadPatch) (*entity.Lead, error) {
	if _, err := uc.Get(ctx, id, email); err != nil {
		return nil, err
	}
	lead, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lead", id).Str("email", email).Msg("lead actualizada")
	return lead, nil
}

// UpdateOperatorNotes reemplaza las notas del operador.
func (uc *LeadUseCase) UpdateOperatorNotes(ctx context.Context, id, notes, email string) (*entity.Lead, error) {
	return uc.update(ctx, id, email, entity.LeadPatch{OperatorNotes: &notes})
}

// UpdateStatus cambia el estado. Cualquier transición es válida mientras el destino pertenezca a la enumeración.
func (uc *LeadUseCase) UpdateStatus(ctx context.Context, id, status, email string) (*entity.Lead, error) {
	s := entity.Status(strings.TrimSpace(status))
	if !entity.ValidStatus(s) {
		return nil, invalid("status", fmt.Sprintf("Stato non valido: %q", status))
	}
	return uc.update(ctx, id, email, entity.LeadPatch{Status: &s})
}

// Update aplica el formulario de edición.
func (uc *LeadUseCase) Update(ctx context.Context, id string, in dto.UpdateLeadRequest, email string) (*entity.Lead, error) {
	var patch entity.LeadPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) < minNameLen {
			return nil, invalid("name", "Il nome è obbligatorio.")
		}
		patch.Name = &name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if utf8.RuneCountInString(phone) < minPhoneLen {
			return nil, invalid("phone", "Il numero di telefono è obbligatorio.")
		}
		patch.Phone = &phone
	}
	if in.Status != nil {
		s := entity.Status(strings.TrimSpace(*in.Status))
		if !entity.ValidStatus(s) {
			return nil, invalid("status", fmt.Sprintf("Stato non valido: %q", *in.Status))
		}
		patch.Status = &s
	}
	patch.Notes = in.Notes
	patch.OperatorNotes = in.OperatorNotes
	if patch.IsEmpty() {
		return nil, invalid("", "Nessun campo da aggiornare")
	}
	return uc.update(ctx, id, email, patch)
}

// StatusOptions estados a los que puede pasar la lead.
func (uc *LeadUseCase) StatusOptions(ctx context.Context, id, email string) (*dto.StatusOptionsResponse, error) {
	lead, err := uc.Get(ctx, id, email)
	if err != nil {
		return nil, err
	}
	return &dto.StatusOptionsResponse{Current: lead.Status, Options: entity.NextStatuses(lead.Status)}, nil
}

// Columns descriptores de columna del rol del email.
func (uc *LeadUseCase) Columns(email string) []access.Column {
	return access.ColumnsFor(uc.resolver.Role(email))
}

// Table lista las leads ya proyectadas en celdas visibles/ocultas según el rol.
func (uc *LeadUseCase) Table(ctx context.Context, email, status, view string) (*access.Table, error) {
	leads, err := uc.List(ctx, email, status, view)
	if err != nil {
		return nil, err
	}
	table := access.BuildTable(uc.resolver.Role(email), leads)
	return &table, nil
}

// Stats KPIs del panel sobre todas las leads visibles.
func (uc *LeadUseCase) Stats(ctx context.Context, email string) (*dto.LeadStatsResponse, error) {
	leads, err := uc.List(ctx, email, "", dto.ViewAll)
	if err != nil {
		return nil, err
	}
	out := &dto.LeadStatsResponse{Total: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case entity.StatusToHandle:
			out.ToHandle++
		case entity.StatusHandled:
			out.Handled++
		}
	}
	return out, nil
}

// Sheet genera la ficha PDF con las columnas visibles para el rol.
func (uc *LeadUseCase) Sheet(ctx context.Context, id, email string) ([]byte, error) {
	lead, err := uc.Get(ctx, id, email)
	if err != nil {
		return nil, err
	}
	out, err := uc.sheets.GenerateLeadSheet(lead, uc.Columns(email))
	if err != nil {
		return nil, fmt.Errorf("ficha lead %s: %w", id, err)
	}
	return out, nil
}
