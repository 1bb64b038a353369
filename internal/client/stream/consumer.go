// Package stream consume el canal SSE de notificaciones de la API y alimenta
// el historial local del operador.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
	"gopkg.in/cenkalti/backoff.v1"

	"github.com/jhoicas/calldesk-api/internal/application/notify"
	"github.com/jhoicas/calldesk-api/internal/client/notifications"
)

// DefaultRetry espera entre reconexiones.
const DefaultRetry = 3 * time.Second

// Config parámetros del consumidor.
type Config struct {
	APIURL       string
	UserEmail    string
	DashboardURL string
	Retry        time.Duration
}

// Consumer se conecta a /leads/notifications y registra cada lead nueva una sola vez.
type Consumer struct {
	cfg     Config
	client  *http.Client
	store   *notifications.Store
	alerter Alerter
	log     zerolog.Logger
}

// NewConsumer construye el consumidor. httpClient nil usa uno sin timeout global (el stream es largo).
func NewConsumer(cfg Config, httpClient *http.Client, store *notifications.Store, alerter Alerter, log zerolog.Logger) *Consumer {
	if cfg.Retry <= 0 {
		cfg.Retry = DefaultRetry
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if alerter == nil {
		alerter = NopAlerter{}
	}
	return &Consumer{
		cfg:     cfg,
		client:  httpClient,
		store:   store,
		alerter: alerter,
		log:     log.With().Str("component", "stream").Logger(),
	}
}

// Run mantiene la conexión abierta hasta que termina ctx, reconectando tras cada corte.
func (c *Consumer) Run(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}
	for {
		err := c.consume(ctx, endpoint)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("stream cerrado por el servidor")
		}
		c.log.Warn().Err(err).Dur("retry", c.cfg.Retry).Msg("conexión al stream perdida")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.Retry):
		}
	}
}

func (c *Consumer) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(c.cfg.APIURL, "/") + "/leads/notifications")
	if err != nil {
		return "", fmt.Errorf("url del stream: %w", err)
	}
	return u.String(), nil
}

// consume abre una conexión y procesa eventos hasta que se cierra. Las
// reconexiones las decide Run: el cliente SSE no reintenta por su cuenta.
func (c *Consumer) consume(ctx context.Context, endpoint string) error {
	client := sse.NewClient(endpoint)
	client.Connection = c.client
	client.ReconnectStrategy = &backoff.StopBackOff{}
	client.ResponseValidator = validateStream
	if c.cfg.UserEmail != "" {
		client.Headers["x-user-email"] = c.cfg.UserEmail
	}

	return client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		// keep-alive y frames sin datos
		if len(msg.Data) == 0 {
			return
		}
		c.handle(ctx, msg.Data)
	})
}

// validateStream exige 200 y text/event-stream antes de leer eventos.
func validateStream(_ *sse.Client, resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("stream respondió %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return fmt.Errorf("content-type inesperado %q", ct)
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, raw []byte) {
	var ev notify.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.log.Error().Err(err).Msg("evento SSE ilegible")
		return
	}

	switch ev.Type {
	case notify.EventConnected:
		c.log.Info().Str("message", ev.Message).Msg("conectado al stream")
	case notify.EventError:
		c.log.Warn().Str("message", ev.Message).Msg("el servidor reporta un error")
	case notify.EventNewLead:
		if ev.Lead == nil {
			return
		}
		n, added := c.store.Add(notifications.Candidate{
			LeadID:            ev.Lead.ID,
			LeadName:          ev.Lead.Name,
			LeadPhone:         ev.Lead.Phone,
			VehicleOfInterest: ev.Lead.VehicleOfInterest,
			InterventionType:  ev.Lead.InterventionType,
			Location:          ev.Lead.Location,
		})
		if !added {
			return
		}
		if err := c.alerter.Alert(ctx, NewAlert(n, c.cfg.DashboardURL)); err != nil {
			c.log.Error().Err(err).Str("lead", n.LeadID).Msg("no se pudo mostrar la alerta")
		}
	}
}
