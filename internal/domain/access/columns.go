package access

import (
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// ColumnKey identificador estable de una columna de la tabla de leads.
type ColumnKey string

// Claves de columna.
const (
	ColCliente            ColumnKey = "cliente"
	ColTipoRichiesta      ColumnKey = "tipoRichiesta"
	ColStato              ColumnKey = "stato"
	ColData               ColumnKey = "data"
	ColNomeCognome        ColumnKey = "nomeCognome"
	ColRecapito           ColumnKey = "recapito"
	ColSede               ColumnKey = "sede"
	ColOrarioRicontatto   ColumnKey = "orarioRicontatto"
	ColDataPreferita      ColumnKey = "dataPreferita"
	ColOrario             ColumnKey = "orario"
	ColRichiestaGenerica  ColumnKey = "richiestaGenerica"
	ColRichiestaSpecifica ColumnKey = "richiestaSpecifica"
	ColAltreSegnalazioni  ColumnKey = "altreSegnalazioni"
	ColFeedback           ColumnKey = "feedback"
	ColMarcaModello       ColumnKey = "marcaModello"
	ColTarga              ColumnKey = "targa"
	ColIntestazione       ColumnKey = "intestazione"
	ColTipoIntervento     ColumnKey = "tipoIntervento"
	ColKilometraggio      ColumnKey = "kilometraggio"
	ColVeicoloSostitutivo ColumnKey = "veicoloSostitutivo"
	ColPezzoDiRicambio    ColumnKey = "pezzoDiRicambio"
	ColTipoRichiestaSales ColumnKey = "tipoRichiestaSales"
	ColProvenienza        ColumnKey = "provenienza"
	ColInformazioniAuto   ColumnKey = "informazioniAuto"
	ColPermuta            ColumnKey = "permuta"
	ColPagamento          ColumnKey = "pagamento"
	ColRagioneSociale     ColumnKey = "ragioneSociale"
	ColAutoAlternativa    ColumnKey = "autoAlternativa"
	ColVenditore          ColumnKey = "venditore"
	ColCambio             ColumnKey = "cambio"
	ColAlimentazione      ColumnKey = "alimentazione"
	ColSitoAnnuncio       ColumnKey = "sitoAnnuncio"
	ColNoteOperatore      ColumnKey = "noteOperatore"
	ColDataCreazione      ColumnKey = "dataCreazione"
	ColAzioni             ColumnKey = "azioni"
)

// Column describe una columna renderizable de la tabla.
type Column struct {
	Key        ColumnKey         `json:"key"`
	Label      string            `json:"label"`
	Roles      []entity.Role     `json:"showForRoles"`
	Categories []entity.Category `json:"showForRequestTypes,omitempty"`
	AlwaysShow bool              `json:"alwaysShow,omitempty"`
}

var (
	officina        = []entity.Role{entity.RoleOfficina}
	sales           = []entity.Role{entity.RoleSales}
	admin           = []entity.Role{entity.RoleAdmin}
	serviceAndParts = []entity.Category{entity.CategoryService, entity.CategoryParts}
	serviceGate     = []entity.Category{entity.CategoryService}
	partsGate       = []entity.Category{entity.CategoryParts}
)

// officinaColumns: taller (SERVICE + PARTS).
var officinaColumns = []Column{
	{Key: ColData, Label: "Data", Roles: officina, AlwaysShow: true},
	{Key: ColNomeCognome, Label: "Nome e Cognome", Roles: officina, AlwaysShow: true},
	{Key: ColRecapito, Label: "Recapito", Roles: officina, AlwaysShow: true},
	{Key: ColTipoRichiesta, Label: "Tipo Richiesta", Roles: officina, AlwaysShow: true},
	{Key: ColSede, Label: "Sede", Roles: officina},
	{Key: ColOrarioRicontatto, Label: "Orario Ricontatto", Roles: officina},
	{Key: ColDataPreferita, Label: "Data Preferita", Roles: officina},
	{Key: ColOrario, Label: "Orario", Roles: officina},

	{Key: ColRichiestaGenerica, Label: "Richiesta Generica", Roles: officina, AlwaysShow: true},
	{Key: ColRichiestaSpecifica, Label: "Richiesta Specifica", Roles: officina},
	{Key: ColAltreSegnalazioni, Label: "Altre Segnalazioni", Roles: officina},
	{Key: ColFeedback, Label: "Feedback", Roles: officina},

	{Key: ColMarcaModello, Label: "Marca Modello", Roles: officina, Categories: serviceAndParts},
	{Key: ColTarga, Label: "Targa", Roles: officina, Categories: serviceAndParts},
	{Key: ColIntestazione, Label: "Intestazione", Roles: officina, Categories: serviceGate},
	{Key: ColTipoIntervento, Label: "Tipo Intervento", Roles: officina, Categories: serviceGate},
	{Key: ColKilometraggio, Label: "Kilometraggio", Roles: officina, Categories: serviceGate},
	{Key: ColVeicoloSostitutivo, Label: "Veicolo Sostitutivo", Roles: officina, Categories: serviceGate},

	{Key: ColPezzoDiRicambio, Label: "Pezzo di Ricambio", Roles: officina, Categories: partsGate},

	{Key: ColStato, Label: "Stato", Roles: officina, AlwaysShow: true},
	{Key: ColNoteOperatore, Label: "Note Operatore", Roles: officina, AlwaysShow: true},
	{Key: ColAzioni, Label: "Azioni", Roles: officina, AlwaysShow: true},
}

// salesColumns: comercial.
var salesColumns = []Column{
	{Key: ColData, Label: "Data", Roles: sales, AlwaysShow: true},
	{Key: ColNomeCognome, Label: "Nome e Cognome", Roles: sales, AlwaysShow: true},
	{Key: ColRecapito, Label: "Recapito", Roles: sales, AlwaysShow: true},
	{Key: ColTipoRichiesta, Label: "Tipo Richiesta", Roles: sales, AlwaysShow: true},
	{Key: ColTipoRichiestaSales, Label: "Tipo Richiesta Sales", Roles: sales, AlwaysShow: true},
	{Key: ColProvenienza, Label: "Provenienza", Roles: sales},
	{Key: ColOrarioRicontatto, Label: "Orario Ricontatto", Roles: sales},
	{Key: ColDataPreferita, Label: "Data Preferita", Roles: sales},
	{Key: ColOrario, Label: "Orario", Roles: sales},
	{Key: ColSede, Label: "Sede", Roles: sales},

	{Key: ColRichiestaGenerica, Label: "Richiesta Generica", Roles: sales, AlwaysShow: true},
	{Key: ColRichiestaSpecifica, Label: "Richiesta Specifica", Roles: sales},
	{Key: ColInformazioniAuto, Label: "Informazioni Auto", Roles: sales},
	{Key: ColAltreSegnalazioni, Label: "Altre Segnalazioni", Roles: sales},
	{Key: ColFeedback, Label: "Feedback", Roles: sales},

	{Key: ColPermuta, Label: "Permuta", Roles: sales},
	{Key: ColPagamento, Label: "Pagamento", Roles: sales},
	{Key: ColRagioneSociale, Label: "Ragione Sociale", Roles: sales},
	{Key: ColAutoAlternativa, Label: "Auto Alternativa", Roles: sales},
	{Key: ColVenditore, Label: "Venditore", Roles: sales},
	{Key: ColCambio, Label: "Cambio", Roles: sales},
	{Key: ColAlimentazione, Label: "Alimentazione", Roles: sales},
	{Key: ColSitoAnnuncio, Label: "Sito Annuncio", Roles: sales},

	{Key: ColStato, Label: "Stato", Roles: sales, AlwaysShow: true},
	{Key: ColNoteOperatore, Label: "Note Operatore", Roles: sales, AlwaysShow: true},
	{Key: ColAzioni, Label: "Azioni", Roles: sales, AlwaysShow: true},
}

// adminColumns: vista resumida con todas las categorías.
var adminColumns = []Column{
	{Key: ColCliente, Label: "Cliente", Roles: admin, AlwaysShow: true},
	{Key: ColTipoRichiesta, Label: "Tipo Richiesta", Roles: admin, AlwaysShow: true},
	{Key: ColStato, Label: "Stato", Roles: admin, AlwaysShow: true},
	{Key: ColRichiestaGenerica, Label: "Richiesta", Roles: admin},
	{Key: ColMarcaModello, Label: "Veicolo", Roles: admin},
	{Key: ColTarga, Label: "Targa", Roles: admin},
	{Key: ColTipoIntervento, Label: "Tipo Intervento", Roles: admin},
	{Key: ColSede, Label: "Sede", Roles: admin},
	{Key: ColDataCreazione, Label: "Data Creazione", Roles: admin},
	{Key: ColAzioni, Label: "Azioni", Roles: admin, AlwaysShow: true},
}

var columnsByRole = map[entity.Role][]Column{
	entity.RoleAdmin:    adminColumns,
	entity.RoleOfficina: officinaColumns,
	entity.RoleSales:    salesColumns,
}

// ColumnsFor devuelve las columnas del rol en orden. Rol desconocido -> columnas de sales.
// El resultado es una copia: el llamador puede modificarlo sin alterar la tabla.
func ColumnsFor(role entity.Role) []Column {
	cols, ok := columnsByRole[role]
	if !ok {
		cols = salesColumns
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// Visible decide si el valor de la columna se muestra para una lead de la categoría dada.
// false significa que la celda se renderiza con el marcador de ocultación.
func Visible(col Column, category entity.Category) bool {
	if col.AlwaysShow {
		return true
	}
	if len(col.Categories) == 0 {
		return true
	}
	if category == "" {
		return false
	}
	return containsCategory(col.Categories, category)
}

// EffectiveColumns calcula la cabecera real para el conjunto de leads filtrado:
// una columna con puerta de categoría que no admite ninguna categoría presente desaparece
// de la cabecera. Las columnas siempre visibles y las no restringidas se mantienen.
func EffectiveColumns(cols []Column, leads []entity.Lead) []Column {
	present := make(map[entity.Category]struct{}, 4)
	for _, l := range leads {
		if l.Category != "" {
			present[l.Category] = struct{}{}
		}
	}
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.AlwaysShow || len(c.Categories) == 0 {
			out = append(out, c)
			continue
		}
		for _, gate := range c.Categories {
			if _, ok := present[gate]; ok {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
