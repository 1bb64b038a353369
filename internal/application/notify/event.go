package notify

import (
	"encoding/json"

	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// EventType tipo de mensaje del canal.
type EventType string

const (
	EventConnected EventType = "connected"
	EventNewLead   EventType = "new_lead"
	EventError     EventType = "error"
)

// Mensajes visibles para el operador.
const (
	msgConnected  = "Connesso al servizio notifiche"
	msgPollFailed = "Errore nel controllo nuove lead"
)

// LeadSummary datos mínimos de la lead para la notificación.
type LeadSummary struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	VehicleOfInterest string          `json:"vehicleOfInterest"`
	InterventionType  string          `json:"interventionType"`
	Location          string          `json:"location"`
	RequestType       entity.Category `json:"requestType,omitempty"`
}

// Event mensaje enviado por el canal.
type Event struct {
	Type    EventType    `json:"type"`
	Message string       `json:"message,omitempty"`
	Lead    *LeadSummary `json:"lead,omitempty"`
}

func summarize(l entity.Lead) *LeadSummary {
	return &LeadSummary{
		ID:                l.ID,
		Name:              l.Name,
		Phone:             l.Phone,
		VehicleOfInterest: l.VehicleOfInterest,
		InterventionType:  l.InterventionType,
		Location:          l.Location,
		RequestType:       l.Category,
	}
}

// SSE serializa el evento con el framing "data: <json>\n\n".
func (e Event) SSE() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(b)+8)
	out = append(out, "data: "...)
	out = append(out, b...)
	out = append(out, '\n', '\n')
	return out, nil
}

// KeepAlive comentario SSE que mantiene viva la conexión a través de proxies.
var KeepAlive = []byte(": ping\n\n")
