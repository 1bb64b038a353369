package airtable

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// Columnas del record store.
const (
	fieldName            = "NomeCognome"
	fieldPhone           = "Recapito"
	fieldStatus          = "StatusLavorazione"
	fieldGenericRequest  = "RichiestaGenerica"
	fieldSpecificRequest = "RichiestaSpecifica"
	fieldOperatorNotes   = "NoteOperatore"
	fieldVehicle         = "MarcaModello"
	fieldPlate           = "Targa"
	fieldIntervention    = "TipoIntervento"
	fieldContactTime     = "OrarioRicontatto"
	fieldPreferredDate   = "DataPreferita"
	fieldPreferredTime   = "Orario"
	fieldLocation        = "Sede"
	fieldRequestDate     = "Data"
	fieldCreated         = "Created"
	fieldLastModified    = "Last Modified"
	fieldAgent           = "Agent"
	fieldCategory        = "TipoRichiesta"
	notesSeparator       = " - "
)

// record forma nativa de un registro.
type record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type updateRequest struct {
	Fields map[string]any `json:"fields"`
}

// fieldString convierte el valor de una celda a texto. Las celdas multi-valor se unen con ", ".
func fieldString(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func textOrNA(fields map[string]any, name string) string {
	if s := fieldString(fields, name); s != "" {
		return s
	}
	return entity.NotAvailable
}

func fieldTime(fields map[string]any, name string, fallback time.Time) time.Time {
	s := fieldString(fields, name)
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}

// joinNotes une richiesta generica y específica, omitiendo las vacías.
func joinNotes(fields map[string]any) string {
	parts := make([]string, 0, 2)
	for _, name := range []string{fieldGenericRequest, fieldSpecificRequest} {
		if s := fieldString(fields, name); s != "" && s != entity.NotAvailable {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return entity.NotAvailable
	}
	return strings.Join(parts, notesSeparator)
}

// toLead traduce un registro al Lead interno. Los detalles ajenos a la categoría se descartan.
func toLead(r record) entity.Lead {
	f := r.Fields
	if f == nil {
		f = map[string]any{}
	}

	status := entity.Status(fieldString(f, fieldStatus))
	if status == "" {
		status = entity.StatusToHandle
	}
	category := entity.Category(strings.ToUpper(fieldString(f, fieldCategory)))
	created := fieldTime(f, fieldCreated, r.CreatedTime)

	var details entity.LeadDetails
	for _, df := range entity.DetailFields {
		*df.Ref(&details) = fieldString(f, df.Name)
	}

	return entity.Lead{
		ID:                r.ID,
		Name:              textOrNA(f, fieldName),
		Phone:             textOrNA(f, fieldPhone),
		Status:            status,
		Notes:             joinNotes(f),
		OperatorNotes:     fieldString(f, fieldOperatorNotes),
		VehicleOfInterest: textOrNA(f, fieldVehicle),
		Plate:             textOrNA(f, fieldPlate),
		InterventionType:  textOrNA(f, fieldIntervention),
		ContactTime:       textOrNA(f, fieldContactTime),
		PreferredDate:     textOrNA(f, fieldPreferredDate),
		PreferredTime:     textOrNA(f, fieldPreferredTime),
		Location:          textOrNA(f, fieldLocation),
		RequestDate:       textOrNA(f, fieldRequestDate),
		CreatedAt:         created,
		UpdatedAt:         fieldTime(f, fieldLastModified, created),
		Agent:             textOrNA(f, fieldAgent),
		Category:          category,
		Details:           details.ForCategory(category),
	}
}

// patchFields traduce el patch a columnas escribibles. Devuelve además los campos descartados.
func patchFields(p entity.LeadPatch) (map[string]any, []string) {
	fields := map[string]any{}
	var dropped []string
	if p.Name != nil {
		fields[fieldName] = *p.Name
	}
	if p.Phone != nil {
		fields[fieldPhone] = *p.Phone
	}
	if p.Status != nil {
		fields[fieldStatus] = string(*p.Status)
	}
	// Notes se lee como generica + específica: el texto editado reemplaza a ambas.
	if p.Notes != nil {
		fields[fieldGenericRequest] = *p.Notes
		fields[fieldSpecificRequest] = ""
	}
	if p.OperatorNotes != nil {
		fields[fieldOperatorNotes] = *p.OperatorNotes
	}
	if p.Agent != nil {
		dropped = append(dropped, "agent")
	}
	if p.Location != nil {
		dropped = append(dropped, "location")
	}
	return fields, dropped
}

// quote escapa un valor para usarlo dentro de una fórmula entre comillas simples.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// buildFormula filtro del lado servidor: teléfono no vacío, estado opcional y categorías opcionales.
func buildFormula(status entity.Status, categories []entity.Category) string {
	clauses := []string{"{" + fieldPhone + "} != ''"}
	if status != "" {
		clauses = append(clauses, "{"+fieldStatus+"} = "+quote(string(status)))
	}
	if len(categories) > 0 {
		ors := make([]string, 0, len(categories))
		for _, c := range categories {
			ors = append(ors, "{"+fieldCategory+"} = "+quote(string(c)))
		}
		clauses = append(clauses, "OR("+strings.Join(ors, ", ")+")")
	}
	return "AND(" + strings.Join(clauses, ", ") + ")"
}
