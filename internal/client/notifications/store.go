// Package notifications mantiene el historial local de avisos de leads nuevas del operador:
// como máximo uno por lead, acotado a MaxNotifications y persistido en un Storage inyectado.
package notifications

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxNotifications avisos conservados; al superarlo se descarta el más antiguo.
const MaxNotifications = 50

// persistTimeout límite de cada escritura en el storage.
const persistTimeout = 5 * time.Second

// Notification aviso persistido.
type Notification struct {
	ID                string `json:"id"`
	LeadID            string `json:"leadId"`
	LeadName          string `json:"leadName"`
	LeadPhone         string `json:"leadPhone"`
	VehicleOfInterest string `json:"vehicleOfInterest"`
	InterventionType  string `json:"interventionType"`
	Location          string `json:"location"`
	Timestamp         int64  `json:"timestamp"` // unix ms
	Read              bool   `json:"read"`
}

// Candidate datos de la lead para un aviso nuevo.
type Candidate struct {
	LeadID            string
	LeadName          string
	LeadPhone         string
	VehicleOfInterest string
	InterventionType  string
	Location          string
}

// Storage persistencia del historial.
type Storage interface {
	Load(ctx context.Context) ([]Notification, error)
	Save(ctx context.Context, list []Notification) error
	Clear(ctx context.Context) error
}

// Option configura el Store.
type Option func(*Store)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store historial en memoria sincronizado con el Storage.
// Los fallos de persistencia se registran en el log y nunca se devuelven al llamador.
type Store struct {
	mu      sync.Mutex
	items   []Notification
	storage Storage
	log     zerolog.Logger
	now     func() time.Time
}

// NewStore carga el historial, elimina duplicados por lead (conserva el más reciente),
// ordena del más reciente al más antiguo y vuelve a guardar si tuvo que reparar la lista.
func NewStore(ctx context.Context, storage Storage, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     log.With().Str("component", "notifications").Logger(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	loaded, err := storage.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("error al cargar notificaciones, se parte de una lista vacía")
		return s
	}

	clean := dedupe(loaded)
	if len(clean) > MaxNotifications {
		clean = clean[:MaxNotifications]
	}
	s.items = clean
	if len(clean) != len(loaded) {
		s.log.Info().Int("antes", len(loaded)).Int("despues", len(clean)).Msg("historial reparado")
		s.persistLocked()
	}
	return s
}

func dedupe(list []Notification) []Notification {
	latest := make(map[string]Notification, len(list))
	for _, n := range list {
		if prev, ok := latest[n.LeadID]; !ok || n.Timestamp > prev.Timestamp {
			latest[n.LeadID] = n
		}
	}
	out := make([]Notification, 0, len(latest))
	for _, n := range latest {
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Add registra un aviso nuevo al principio de la lista.
// Si ya existe uno para la misma lead devuelve el existente y false.
func (s *Store) Add(c Candidate) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.items {
		if n.LeadID == c.LeadID {
			return n, false
		}
	}

	ts := s.now().UnixMilli()
	n := Notification{
		ID:                newID(c.LeadID, ts),
		LeadID:            c.LeadID,
		LeadName:          c.LeadName,
		LeadPhone:         c.LeadPhone,
		VehicleOfInterest: c.VehicleOfInterest,
		InterventionType:  c.InterventionType,
		Location:          c.Location,
		Timestamp:         ts,
	}

	items := make([]Notification, 0, len(s.items)+1)
	items = append(items, n)
	items = append(items, s.items...)
	if len(items) > MaxNotifications {
		items = items[:MaxNotifications]
	}
	s.items = items
	s.persistLocked()
	return n, true
}

// newID "<leadId>-<unixMillis>-<9 caracteres aleatorios>".
func newID(leadID string, ts int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return leadID + "-" + strconv.FormatInt(ts, 10) + "-" + suffix
}

// MarkRead marca un aviso como leído. false si no existe.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			s.persistLocked()
			return true
		}
	}
	return false
}

// MarkAllRead marca todos los avisos como leídos.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.persistLocked()
}

// Remove elimina un aviso. false si no existe.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Clear vacía el historial y borra la persistencia.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("error al borrar notificaciones")
	}
}

// List copia del historial, del más reciente al más antiguo.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount avisos sin leer.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Has indica si ya hay un aviso para la lead.
func (s *Store) Has(leadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.LeadID == leadID {
			return true
		}
	}
	return false
}

func (s *Store) persistLocked() {
	snapshot := make([]Notification, len(s.items))
	copy(snapshot, s.items)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Save(ctx, snapshot); err != nil {
		s.log.Error().Err(err).Msg("error al guardar notificaciones")
	}
}
