// Package pdf genera la ficha imprimible de una lead.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre cliente        │  Categoría + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CAMPOS: una fila etiqueta / valor por columna visible       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLES: atributos de la categoría de la lead              │
//	│  NOTAS OPERADOR                                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/calldesk-api/internal/application/ports"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

var _ ports.LeadSheetGenerator = (*MarotoLeadSheet)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoLeadSheet implementa ports.LeadSheetGenerator usando Maroto v2.
type MarotoLeadSheet struct {
	now func() time.Time
}

// NewMarotoLeadSheet construye el generador.
func NewMarotoLeadSheet() *MarotoLeadSheet { return &MarotoLeadSheet{now: time.Now} }

// GenerateLeadSheet genera el PDF con las columnas recibidas (ya filtradas por rol) y devuelve sus bytes.
func (g *MarotoLeadSheet) GenerateLeadSheet(lead *entity.Lead, columns []access.Column) ([]byte, error) {
	if lead == nil {
		return nil, fmt.Errorf("pdf: lead nil")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Scheda lead "+lead.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(lead, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sectionRow("DATI RICHIESTA"))
	for _, c := range columns {
		if c.Key == access.ColAzioni {
			continue
		}
		value, visible := access.CellValue(c, *lead)
		if !visible {
			continue
		}
		m.AddRows(fieldRow(c.Label, value))
	}

	if details := detailRows(lead); len(details) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(sectionRow("DETTAGLI"))
		m.AddRows(details...)
	}

	if lead.OperatorNotes != "" {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(sectionRow("NOTE OPERATORE"))
		m.AddRows(row.New(20).Add(col.New(12).Add(
			text.New(lead.OperatorNotes, props.Text{Size: 9, Top: 1}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(lead *entity.Lead, printedAt time.Time) core.Row {
	category := string(lead.Category)
	if category == "" {
		category = entity.NotAvailable
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(lead.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Lead "+lead.ID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(category, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Stampata il "+printedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func fieldRow(label, value string) core.Row {
	return row.New(7).Add(
		col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
		col.New(8).Add(text.New(value, props.Text{Size: 8, Top: 1})),
	)
}

// detailRows atributos no vacíos. Los detalles ya llegan filtrados por la categoría de la lead.
func detailRows(lead *entity.Lead) []core.Row {
	details := lead.Details
	var rows []core.Row
	for _, f := range entity.DetailFields {
		if !f.Allows(lead.Category) {
			continue
		}
		v := *f.Ref(&details)
		if v == "" || v == entity.NotAvailable {
			continue
		}
		rows = append(rows, fieldRow(f.Name, v))
	}
	return rows
}
