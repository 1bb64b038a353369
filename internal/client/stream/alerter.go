package stream

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/client/notifications"
)

// AlertTitle título de la alerta de escritorio.
const AlertTitle = "Nuova Lead Ricevuta"

// Alert aviso visible para el operador.
type Alert struct {
	Title  string
	Body   string
	LeadID string
	Link   string
}

// NewAlert arma la alerta de una notificación. Link abre la lead en el panel.
func NewAlert(n notifications.Notification, dashboardURL string) Alert {
	body := strings.Join([]string{
		n.LeadName,
		"Tel: " + n.LeadPhone,
		"Veicolo: " + n.VehicleOfInterest,
		"Intervento: " + n.InterventionType,
		"Sede: " + n.Location,
	}, "\n")

	a := Alert{Title: AlertTitle, Body: body, LeadID: n.LeadID}
	if dashboardURL != "" {
		if u, err := url.Parse(dashboardURL); err == nil {
			q := u.Query()
			q.Set("lead", n.LeadID)
			u.RawQuery = q.Encode()
			a.Link = u.String()
		}
	}
	return a
}

// Alerter muestra alertas al operador.
type Alerter interface {
	Alert(ctx context.Context, a Alert) error
}

// NopAlerter descarta las alertas.
type NopAlerter struct{}

func (NopAlerter) Alert(context.Context, Alert) error { return nil }

// LogAlerter escribe las alertas en el log; útil en servidores sin escritorio.
type LogAlerter struct {
	log zerolog.Logger
}

// NewLogAlerter construye el alerter.
func NewLogAlerter(log zerolog.Logger) *LogAlerter {
	return &LogAlerter{log: log.With().Str("component", "alert").Logger()}
}

func (a *LogAlerter) Alert(_ context.Context, al Alert) error {
	a.log.Info().
		Str("lead", al.LeadID).
		Str("title", al.Title).
		Str("link", al.Link).
		Msg(al.Body)
	return nil
}
