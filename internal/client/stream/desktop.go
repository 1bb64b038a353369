package stream

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// NotifyFunc muestra una notificación nativa del sistema.
type NotifyFunc func(title, message string) error

// beeepNotify notificación del escritorio sin icono propio.
func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// DesktopAlerter muestra cada alerta como notificación del escritorio.
type DesktopAlerter struct {
	notify NotifyFunc
	log    zerolog.Logger
}

// NewDesktopAlerter construye el alerter. notify nil usa la notificación nativa (beeep).
func NewDesktopAlerter(notify NotifyFunc, log zerolog.Logger) *DesktopAlerter {
	if notify == nil {
		notify = beeepNotify
	}
	return &DesktopAlerter{notify: notify, log: log.With().Str("component", "alert").Logger()}
}

func (a *DesktopAlerter) Alert(_ context.Context, al Alert) error {
	body := al.Body
	if al.Link != "" {
		body += "\nApri: " + al.Link
	}
	if err := a.notify(al.Title, body); err != nil {
		a.log.Warn().Err(err).Str("lead", al.LeadID).Msg("notificación de escritorio fallida")
		return fmt.Errorf("notificación de escritorio: %w", err)
	}
	a.log.Debug().Str("lead", al.LeadID).Msg("notificación de escritorio mostrada")
	return nil
}
