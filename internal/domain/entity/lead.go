package entity

import "time"

// Category clasifica la solicitud (campo TipoRichiesta del record store).
type Category string

// Categorías conocidas.
const (
	CategorySales   Category = "SALES"
	CategoryParts   Category = "PARTS"
	CategoryService Category = "SERVICE"
	CategoryGeneric Category = "GENERIC"
)

// Status estado de trabajo de la lead (campo StatusLavorazione).
type Status string

// Estados válidos. Las transiciones no están restringidas: cualquier estado puede pasar a cualquier otro.
const (
	StatusToHandle      Status = "Da gestire"
	StatusHandled       Status = "Gestita"
	StatusToContact     Status = "Da contattare"
	StatusContacted     Status = "Contattato"
	StatusContactFailed Status = "Contatto fallito, da ricontattare"
	StatusNew           Status = "Nuovo"
	StatusInProgress    Status = "In Lavorazione"
	StatusClosed        Status = "Chiuso"
	StatusNoAnswer      Status = "Non Risponde"
	StatusNotInterested Status = "Non interessato"
)

// Statuses orden en el que se ofrecen los estados al operador.
var Statuses = []Status{
	StatusToHandle,
	StatusHandled,
	StatusToContact,
	StatusContacted,
	StatusContactFailed,
	StatusNew,
	StatusInProgress,
	StatusClosed,
	StatusNoAnswer,
	StatusNotInterested,
}

// ValidStatus indica si s pertenece a la enumeración.
func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// NextStatuses devuelve los estados destino distintos del actual.
func NextStatuses(current Status) []Status {
	out := make([]Status, 0, len(Statuses))
	for _, s := range Statuses {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}

// NotAvailable marcador que usa la automatización de ingreso para campos vacíos.
const NotAvailable = "N/A"

// Lead representa una solicitud de contacto (ventas, taller o recambios).
// La crea la automatización externa; este sistema solo la lee y actualiza estado y notas.
type Lead struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Phone             string      `json:"phone"`
	Status            Status      `json:"status"`
	Notes             string      `json:"notes"`
	OperatorNotes     string      `json:"operatorNotes"`
	VehicleOfInterest string      `json:"vehicleOfInterest"`
	Plate             string      `json:"plate"`
	InterventionType  string      `json:"interventionType"`
	ContactTime       string      `json:"contactTime"`
	PreferredDate     string      `json:"preferredDate"`
	PreferredTime     string      `json:"preferredTime"`
	Location          string      `json:"location"`
	RequestDate       string      `json:"requestDate"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Agent             string      `json:"agent"`
	Category          Category    `json:"requestType,omitempty"`
	Details           LeadDetails `json:"details"`
}

// LeadPatch campos modificables de una lead. nil = no tocar.
// El adaptador del record store descarta los campos que su esquema no admite.
type LeadPatch struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Status        *Status `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	OperatorNotes *string `json:"operatorNotes,omitempty"`
	Agent         *string `json:"agent,omitempty"`
	Location      *string `json:"location,omitempty"`
}

// IsEmpty indica si el patch no modifica ningún campo.
func (p LeadPatch) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil && p.Status == nil && p.Notes == nil &&
		p.OperatorNotes == nil && p.Agent == nil && p.Location == nil
}
