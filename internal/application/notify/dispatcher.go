// Package notify detecta leads nuevas en el record store y las empuja a los canales
// de notificación abiertos (SSE). Cada lead se notifica una sola vez por proceso.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
	"github.com/jhoicas/calldesk-api/internal/domain/repository"
)

// Valores por defecto.
const (
	DefaultPollInterval = 20 * time.Second
	DefaultScanWindow   = 10
	DefaultQueueSize    = 32
)

// ErrClosed el dispatcher ya se cerró.
var ErrClosed = errors.New("notify: dispatcher cerrado")

// LeadLister lectura de leads que necesita el dispatcher.
type LeadLister interface {
	List(ctx context.Context, filter repository.LeadFilter) ([]entity.Lead, error)
}

// State fase del dispatcher.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateSteady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateSteady:
		return "steady"
	default:
		return "uninitialized"
	}
}

// Config parámetros del sondeo.
type Config struct {
	PollInterval time.Duration
	// ScanWindow número de leads más recientes que se revisan en cada pasada. <= 0 revisa todas.
	// Con una ventana acotada, una ráfaga de más leads que la ventana entre dos pasadas
	// deja las sobrantes sin notificar.
	ScanWindow int
	QueueSize  int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// Status resumen del estado, expuesto en GET /webhooks/new-leads.
type Status struct {
	State         string `json:"state"`
	Initialized   bool   `json:"initialized"`
	NotifiedCount int    `json:"notifiedCount"`
	Channels      int    `json:"channels"`
}

// Dispatcher mantiene los canales abiertos y el conjunto de leads conocidas.
type Dispatcher struct {
	repo  LeadLister
	known *KnownSet
	cfg   Config
	log   zerolog.Logger

	seedMu sync.Mutex
	pollMu sync.Mutex

	mu       sync.Mutex
	state    State
	channels map[*Channel]struct{}
	closed   bool
}

// NewDispatcher construye el dispatcher. known debe ser el conjunto único del proceso.
func NewDispatcher(repo LeadLister, known *KnownSet, cfg Config, log zerolog.Logger) *Dispatcher {
	if cfg.ScanWindow == 0 {
		cfg.ScanWindow = DefaultScanWindow
	}
	return &Dispatcher{
		repo:     repo,
		known:    known,
		cfg:      cfg.withDefaults(),
		log:      log.With().Str("component", "notify").Logger(),
		channels: make(map[*Channel]struct{}),
	}
}

// State fase actual.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// ensureSeeded siembra el conjunto con las leads existentes la primera vez.
// Si el store falla vuelve a Uninitialized y el siguiente tick lo reintenta.
func (d *Dispatcher) ensureSeeded(ctx context.Context) error {
	d.seedMu.Lock()
	defer d.seedMu.Unlock()

	if d.known.Seeded() {
		d.setState(StateSteady)
		return nil
	}

	d.setState(StateInitializing)
	leads, err := d.repo.List(ctx, repository.LeadFilter{})
	if err != nil {
		d.setState(StateUninitialized)
		return fmt.Errorf("sembrar leads conocidas: %w", err)
	}
	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	d.known.Seed(ids)
	d.setState(StateSteady)
	d.log.Info().Int("leads", len(ids)).Msg("leads existentes registradas para notificaciones")
	return nil
}

// Subscribe abre un canal que recibe solo leads de las categorías permitidas (nil = todas).
// El canal arranca con un evento "connected", hace una pasada inmediata y luego una cada PollInterval.
// Se cierra con Channel.Close o cuando termina ctx.
func (d *Dispatcher) Subscribe(ctx context.Context, allowed []entity.Category) (*Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.ensureSeeded(ctx); err != nil {
		d.log.Warn().Err(err).Msg("inicialización de notificaciones fallida, se reintenta en el próximo sondeo")
	}

	ch := newChannel(d, allowed, d.cfg.QueueSize)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	d.channels[ch] = struct{}{}
	total := len(d.channels)
	d.mu.Unlock()

	ch.send(Event{Type: EventConnected, Message: msgConnected})
	d.log.Info().Str("channel", ch.id).Int("channels", total).Msg("canal de notificaciones abierto")

	go d.run(ctx, ch)
	return ch, nil
}

func (d *Dispatcher) run(ctx context.Context, ch *Channel) {
	defer ch.Close()

	d.pollFor(ctx, ch)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch.done:
			return
		case <-ticker.C:
			d.pollFor(ctx, ch)
		}
	}
}

func (d *Dispatcher) pollFor(ctx context.Context, ch *Channel) {
	if _, err := d.PollNow(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.log.Error().Err(err).Str("channel", ch.id).Msg("error en el control de nuevas leads")
		ch.send(Event{Type: EventError, Message: msgPollFailed})
	}
}

// PollNow ejecuta una pasada: revisa las ScanWindow leads más recientes y notifica las no vistas,
// de la más reciente a la más antigua. Devuelve cuántas leads nuevas encontró.
func (d *Dispatcher) PollNow(ctx context.Context) (int, error) {
	if err := d.ensureSeeded(ctx); err != nil {
		return 0, err
	}

	d.pollMu.Lock()
	defer d.pollMu.Unlock()

	leads, err := d.repo.List(ctx, repository.LeadFilter{})
	if err != nil {
		return 0, fmt.Errorf("listar leads: %w", err)
	}

	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	if w := d.cfg.ScanWindow; w > 0 && len(leads) > w {
		leads = leads[:w]
	}

	found := 0
	for _, l := range leads {
		if !d.known.MarkSeen(l.ID) {
			continue
		}
		found++
		d.broadcast(l)
	}
	if found > 0 {
		d.log.Info().Int("nuevas", found).Msg("nuevas leads notificadas")
	}
	return found, nil
}

// Push notifica de inmediato las leads indicadas por la automatización de ingreso,
// si existen y todavía no se notificaron.
func (d *Dispatcher) Push(ctx context.Context, ids []string) (int, error) {
	if err := d.ensureSeeded(ctx); err != nil {
		return 0, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	d.pollMu.Lock()
	defer d.pollMu.Unlock()

	leads, err := d.repo.List(ctx, repository.LeadFilter{})
	if err != nil {
		return 0, fmt.Errorf("listar leads: %w", err)
	}

	found := 0
	for _, l := range leads {
		if _, ok := wanted[l.ID]; !ok {
			continue
		}
		if !d.known.MarkSeen(l.ID) {
			continue
		}
		found++
		d.broadcast(l)
	}
	return found, nil
}

// broadcast entrega la lead a cada canal cuyo filtro de categoría la admite.
func (d *Dispatcher) broadcast(l entity.Lead) {
	ev := Event{Type: EventNewLead, Lead: summarize(l)}

	d.mu.Lock()
	targets := make([]*Channel, 0, len(d.channels))
	for ch := range d.channels {
		if access.CanView(l, ch.allowed) {
			targets = append(targets, ch)
		}
	}
	d.mu.Unlock()

	for _, ch := range targets {
		if !ch.send(ev) {
			d.log.Warn().Str("channel", ch.id).Str("lead", l.ID).Msg("cola del canal llena, notificación descartada")
		}
	}
}

// Status resumen para diagnóstico.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	state, channels := d.state, len(d.channels)
	d.mu.Unlock()
	return Status{
		State:         state.String(),
		Initialized:   d.known.Seeded(),
		NotifiedCount: d.known.Len(),
		Channels:      channels,
	}
}

// Close cierra todos los canales y rechaza nuevas suscripciones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	open := make([]*Channel, 0, len(d.channels))
	for ch := range d.channels {
		open = append(open, ch)
	}
	d.mu.Unlock()

	for _, ch := range open {
		ch.Close()
	}
}

// Closed indica si Close ya se llamó.
func (d *Dispatcher) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dispatcher) unregister(ch *Channel) {
	d.mu.Lock()
	delete(d.channels, ch)
	total := len(d.channels)
	d.mu.Unlock()
	d.log.Info().Str("channel", ch.id).Int("channels", total).Msg("canal de notificaciones cerrado")
}

// Channel conexión de notificaciones de un cliente.
type Channel struct {
	id      string
	allowed []entity.Category
	d       *Dispatcher

	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func newChannel(d *Dispatcher, allowed []entity.Category, size int) *Channel {
	return &Channel{
		id:      uuid.NewString(),
		allowed: allowed,
		d:       d,
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
}

// ID identificador del canal (para logs).
func (c *Channel) ID() string { return c.id }

// Events cola de eventos; se cierra al cerrar el canal.
func (c *Channel) Events() <-chan Event { return c.events }

// Done se cierra cuando el canal termina.
func (c *Channel) Done() <-chan struct{} { return c.done }

// send encola sin bloquear. false si la cola está llena o el canal cerrado.
func (c *Channel) send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Close desregistra el canal, detiene su sondeo y cierra la cola. Idempotente.
func (c *Channel) Close() {
	c.once.Do(func() {
		c.d.unregister(c)
		close(c.done)
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
}
