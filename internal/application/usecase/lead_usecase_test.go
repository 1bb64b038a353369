package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
	"github.com/jhoicas/calldesk-api/internal/domain/repository"
)

const (
	adminEmail    = "direzione@calldesk.example"
	officinaEmail = "officina@calldesk.example"
	salesEmail    = "vendite@calldesk.example"
)

// fakeLeadRepo ignora el filtro de categorías a propósito: simula un store que no filtra bien.
type fakeLeadRepo struct {
	leads      []entity.Lead
	lastFilter repository.LeadFilter
	patches    []entity.LeadPatch
	listErr    error
}

func (f *fakeLeadRepo) List(_ context.Context, filter repository.LeadFilter) ([]entity.Lead, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLeadRepo) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	for _, l := range f.leads {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLeadRepo) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	f.patches = append(f.patches, patch)
	for i := range f.leads {
		if f.leads[i].ID != id {
			continue
		}
		if patch.Status != nil {
			f.leads[i].Status = *patch.Status
		}
		if patch.OperatorNotes != nil {
			f.leads[i].OperatorNotes = *patch.OperatorNotes
		}
		if patch.Name != nil {
			f.leads[i].Name = *patch.Name
		}
		return f.GetByID(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeSheets struct {
	columns []access.Column
}

func (f *fakeSheets) GenerateLeadSheet(_ *entity.Lead, columns []access.Column) ([]byte, error) {
	f.columns = columns
	return []byte("%PDF-fake"), nil
}

func seedLeads() []entity.Lead {
	return []entity.Lead{
		{ID: "s1", Name: "Servizio", Status: entity.StatusToHandle, Category: entity.CategoryService},
		{ID: "p1", Name: "Ricambi", Status: entity.StatusHandled, Category: entity.CategoryParts},
		{ID: "v1", Name: "Vendita", Status: entity.StatusToHandle, Category: entity.CategorySales},
		{ID: "u1", Name: "Senza categoria", Status: entity.StatusContacted},
	}
}

func newLeadUC(repo *fakeLeadRepo, sheets *fakeSheets) *usecase.LeadUseCase {
	if sheets == nil {
		sheets = &fakeSheets{}
	}
	return usecase.NewLeadUseCase(repo, access.NewResolver(nil), sheets, zerolog.Nop())
}

func ids(leads []entity.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: officina pide leads; el store devuelve también una de SALES y se descarta.
func TestList_OfficinaNuncaVeVentas(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	uc := newLeadUC(repo, nil)

	leads, err := uc.List(context.Background(), officinaEmail, "", dto.ViewAll)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"s1", "p1", "u1"}, ids(leads))
	assert.Equal(t, []entity.Category{entity.CategoryService, entity.CategoryParts}, repo.lastFilter.Categories)
}

// Caso 2: admin no tiene filtro de categorías.
func TestList_AdminVeTodo(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	leads, err := newLeadUC(repo, nil).List(context.Background(), adminEmail, "", "")
	require.NoError(t, err)

	assert.Len(t, leads, 4)
	assert.Nil(t, repo.lastFilter.Categories)
}

// Caso 3: view=all ignora el estado; otra vista lo aplica.
func TestList_FiltroDeEstadoSegunVista(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	uc := newLeadUC(repo, nil)

	_, err := uc.List(context.Background(), adminEmail, "Da gestire", dto.ViewAll)
	require.NoError(t, err)
	assert.Empty(t, repo.lastFilter.Status)

	leads, err := uc.List(context.Background(), adminEmail, "Da gestire", "filtered")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusToHandle, repo.lastFilter.Status)
	assert.ElementsMatch(t, []string{"s1", "v1"}, ids(leads))
}

// Caso 4: email desconocido cae en sales.
func TestList_EmailDesconocidoEsSales(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	leads, err := newLeadUC(repo, nil).List(context.Background(), "nuovo@altro.example", "", dto.ViewAll)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "u1"}, ids(leads))
}

func TestList_ErrorDelStore(t *testing.T) {
	repo := &fakeLeadRepo{listErr: domain.ErrUpstream}
	_, err := newLeadUC(repo, nil).List(context.Background(), adminEmail, "", "")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

// ──────────────────────────────────────────────────────────────────────────────
// Get
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_Permisos(t *testing.T) {
	uc := newLeadUC(&fakeLeadRepo{leads: seedLeads()}, nil)
	ctx := context.Background()

	_, err := uc.Get(ctx, "v1", officinaEmail)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	lead, err := uc.Get(ctx, "v1", salesEmail)
	require.NoError(t, err)
	assert.Equal(t, "Vendita", lead.Name)

	_, err = uc.Get(ctx, "v1", "")
	assert.NoError(t, err, "sin identidad no se comprueba la categoría")

	_, err = uc.Get(ctx, "u1", officinaEmail)
	assert.NoError(t, err, "las leads sin categoría son visibles")

	_, err = uc.Get(ctx, "nope", adminEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateOperatorNotes(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	uc := newLeadUC(repo, nil)

	lead, err := uc.UpdateOperatorNotes(context.Background(), "s1", "Richiamare", officinaEmail)
	require.NoError(t, err)
	assert.Equal(t, "Richiamare", lead.OperatorNotes)

	_, err = uc.UpdateOperatorNotes(context.Background(), "v1", "x", officinaEmail)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Len(t, repo.patches, 1, "sin permiso no se escribe")
}

func TestUpdateStatus(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	uc := newLeadUC(repo, nil)

	// Cualquier transición es válida: Gestita -> Da gestire.
	lead, err := uc.UpdateStatus(context.Background(), "p1", "Da gestire", adminEmail)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusToHandle, lead.Status)

	_, err = uc.UpdateStatus(context.Background(), "p1", "Archiviata", adminEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, repo.patches, 1)
}

func TestUpdateStatus_AceptaTodaLaEnumeracion(t *testing.T) {
	cases := []struct {
		status string
		valid  bool
	}{
		{"Da gestire", true},
		{"Gestita", true},
		{"Da contattare", true},
		{"Contattato", true},
		{"Contatto fallito, da ricontattare", true},
		{"Nuovo", true},
		{"In Lavorazione", true},
		{"Chiuso", true},
		{"Non Risponde", true},
		{"Non interessato", true},
		{" Chiuso ", true},
		{"Archiviata", false},
		{"chiuso", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			repo := &fakeLeadRepo{leads: seedLeads()}
			uc := newLeadUC(repo, nil)

			lead, err := uc.UpdateStatus(context.Background(), "s1", tc.status, adminEmail)
			if !tc.valid {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				assert.Empty(t, repo.patches)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.Status(strings.TrimSpace(tc.status)), lead.Status)

			// El formulario de edición acepta el mismo conjunto.
			_, err = uc.Update(context.Background(), "s1", dto.UpdateLeadRequest{Status: &tc.status}, adminEmail)
			assert.NoError(t, err)
		})
	}
}

func TestUpdate_ValidaFormulario(t *testing.T) {
	repo := &fakeLeadRepo{leads: seedLeads()}
	uc := newLeadUC(repo, nil)
	str := func(s string) *string { return &s }

	cases := []struct {
		name string
		in   dto.UpdateLeadRequest
	}{
		{"Caso 1: nombre corto", dto.UpdateLeadRequest{Name: str("A")}},
		{"Caso 2: teléfono corto", dto.UpdateLeadRequest{Phone: str("123")}},
		{"Caso 3: estado desconocido", dto.UpdateLeadRequest{Status: str("Archiviata")}},
		{"Caso 4: sin campos", dto.UpdateLeadRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Update(context.Background(), "s1", tc.in, adminEmail)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
	assert.Empty(t, repo.patches)

	lead, err := uc.Update(context.Background(), "s1", dto.UpdateLeadRequest{Name: str("  Anna Verdi ")}, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, "Anna Verdi", lead.Name)
}

func TestStatusOptions_ExcluyeElActual(t *testing.T) {
	uc := newLeadUC(&fakeLeadRepo{leads: seedLeads()}, nil)

	out, err := uc.StatusOptions(context.Background(), "s1", adminEmail)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusToHandle, out.Current)
	assert.NotContains(t, out.Options, entity.StatusToHandle)
	assert.Len(t, out.Options, len(entity.Statuses)-1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tabla, KPIs y ficha
// ──────────────────────────────────────────────────────────────────────────────

func TestTable_RolYFilas(t *testing.T) {
	uc := newLeadUC(&fakeLeadRepo{leads: seedLeads()}, nil)

	table, err := uc.Table(context.Background(), officinaEmail, "", dto.ViewAll)
	require.NoError(t, err)

	assert.Equal(t, entity.RoleOfficina, table.Role)
	assert.Len(t, table.Rows, 3)
	for _, r := range table.Rows {
		assert.Len(t, r.Cells, len(table.Columns))
	}
}

func TestStats(t *testing.T) {
	uc := newLeadUC(&fakeLeadRepo{leads: seedLeads()}, nil)

	out, err := uc.Stats(context.Background(), adminEmail)
	require.NoError(t, err)
	assert.Equal(t, dto.LeadStatsResponse{Total: 4, ToHandle: 2, Handled: 1}, *out)

	out, err = uc.Stats(context.Background(), salesEmail)
	require.NoError(t, err)
	assert.Equal(t, dto.LeadStatsResponse{Total: 2, ToHandle: 1, Handled: 0}, *out)
}

func TestSheet_UsaColumnasDelRol(t *testing.T) {
	sheets := &fakeSheets{}
	uc := newLeadUC(&fakeLeadRepo{leads: seedLeads()}, sheets)

	out, err := uc.Sheet(context.Background(), "s1", officinaEmail)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	assert.Equal(t, access.ColumnsFor(entity.RoleOfficina), sheets.columns)

	_, err = uc.Sheet(context.Background(), "v1", officinaEmail)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
