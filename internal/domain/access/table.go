package access

import (
	"strings"

	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// RedactedPlaceholder texto de una celda cuyo valor no corresponde a la categoría de la lead.
const RedactedPlaceholder = "-"

// createdLayout formato de la fecha de creación en la vista admin.
const createdLayout = "02/01/2006 15:04"

type cellAccessor func(l entity.Lead) string

// accessors tabla columna -> valor. Una columna sin accessor se renderiza vacía.
var accessors = map[ColumnKey]cellAccessor{
	ColCliente: func(l entity.Lead) string {
		if l.Phone == "" || l.Phone == entity.NotAvailable {
			return l.Name
		}
		return l.Name + " (" + l.Phone + ")"
	},
	ColTipoRichiesta:      func(l entity.Lead) string { return string(l.Category) },
	ColStato:              func(l entity.Lead) string { return string(l.Status) },
	ColData:               func(l entity.Lead) string { return l.RequestDate },
	ColNomeCognome:        func(l entity.Lead) string { return l.Name },
	ColRecapito:           func(l entity.Lead) string { return l.Phone },
	ColSede:               func(l entity.Lead) string { return l.Location },
	ColOrarioRicontatto:   func(l entity.Lead) string { return l.ContactTime },
	ColDataPreferita:      func(l entity.Lead) string { return l.PreferredDate },
	ColOrario:             func(l entity.Lead) string { return l.PreferredTime },
	ColRichiestaGenerica:  func(l entity.Lead) string { return l.Details.GenericRequest },
	ColRichiestaSpecifica: func(l entity.Lead) string { return l.Details.SpecificRequest },
	ColAltreSegnalazioni:  func(l entity.Lead) string { return l.Details.OtherReports },
	ColFeedback:           func(l entity.Lead) string { return l.Details.Feedback },
	ColMarcaModello:       func(l entity.Lead) string { return l.VehicleOfInterest },
	ColTarga:              func(l entity.Lead) string { return l.Plate },
	ColIntestazione:       func(l entity.Lead) string { return l.Details.Registration },
	ColTipoIntervento:     func(l entity.Lead) string { return l.InterventionType },
	ColKilometraggio:      func(l entity.Lead) string { return l.Details.Mileage },
	ColVeicoloSostitutivo: func(l entity.Lead) string { return l.Details.CourtesyVehicle },
	ColPezzoDiRicambio:    func(l entity.Lead) string { return l.Details.SparePart },
	ColTipoRichiestaSales: func(l entity.Lead) string { return l.Details.SalesRequestType },
	ColProvenienza:        func(l entity.Lead) string { return l.Details.Origin },
	ColInformazioniAuto:   func(l entity.Lead) string { return l.Details.CarInfo },
	ColPermuta:            func(l entity.Lead) string { return l.Details.TradeIn },
	ColPagamento:          func(l entity.Lead) string { return l.Details.Payment },
	ColRagioneSociale:     func(l entity.Lead) string { return l.Details.CompanyName },
	ColAutoAlternativa:    func(l entity.Lead) string { return l.Details.AlternativeCar },
	ColVenditore:          func(l entity.Lead) string { return l.Details.Salesperson },
	ColCambio:             func(l entity.Lead) string { return l.Details.Transmission },
	ColAlimentazione:      func(l entity.Lead) string { return l.Details.FuelType },
	ColSitoAnnuncio:       func(l entity.Lead) string { return l.Details.ListingSite },
	ColNoteOperatore:      func(l entity.Lead) string { return l.OperatorNotes },
	ColDataCreazione: func(l entity.Lead) string {
		if l.CreatedAt.IsZero() {
			return ""
		}
		return l.CreatedAt.Format(createdLayout)
	},
	// La columna de acciones transporta el id para que el cliente enlace sus botones.
	ColAzioni: func(l entity.Lead) string { return l.ID },
}

// CellValue devuelve el valor de la celda y si es visible.
// Si no lo es, el valor es RedactedPlaceholder y nunca el dato real.
func CellValue(col Column, lead entity.Lead) (string, bool) {
	if !Visible(col, lead.Category) {
		return RedactedPlaceholder, false
	}
	get, ok := accessors[col.Key]
	if !ok {
		return "", true
	}
	return strings.TrimSpace(get(lead)), true
}

// Cell celda renderizada.
type Cell struct {
	Key      ColumnKey `json:"key"`
	Value    string    `json:"value"`
	Redacted bool      `json:"redacted,omitempty"`
}

// Row fila de la tabla asociada a una lead.
type Row struct {
	LeadID   string          `json:"leadId"`
	Category entity.Category `json:"requestType,omitempty"`
	Cells    []Cell          `json:"cells"`
}

// Table cabecera efectiva más filas, lista para serializar.
type Table struct {
	Role    entity.Role `json:"role"`
	Columns []Column    `json:"columns"`
	Rows    []Row       `json:"rows"`
}

// BuildTable arma la tabla del rol para las leads ya filtradas por categoría.
func BuildTable(role entity.Role, leads []entity.Lead) Table {
	cols := EffectiveColumns(ColumnsFor(role), leads)
	rows := make([]Row, 0, len(leads))
	for _, l := range leads {
		cells := make([]Cell, 0, len(cols))
		for _, c := range cols {
			v, visible := CellValue(c, l)
			cells = append(cells, Cell{Key: c.Key, Value: v, Redacted: !visible})
		}
		rows = append(rows, Row{LeadID: l.ID, Category: l.Category, Cells: cells})
	}
	return Table{Role: role, Columns: cols, Rows: rows}
}
