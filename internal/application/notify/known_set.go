package notify

import "sync"

// KnownSet ids de leads ya notificadas (o existentes al arrancar).
// Se construye una vez por proceso y se inyecta en el Dispatcher.
type KnownSet struct {
	mu     sync.Mutex
	ids    map[string]struct{}
	seeded bool
}

// NewKnownSet crea un conjunto vacío sin sembrar.
func NewKnownSet() *KnownSet {
	return &KnownSet{ids: make(map[string]struct{})}
}

// Seed marca como conocidas las leads existentes. Solo la primera llamada tiene efecto.
func (k *KnownSet) Seed(ids []string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.seeded {
		return false
	}
	for _, id := range ids {
		k.ids[id] = struct{}{}
	}
	k.seeded = true
	return true
}

// Seeded indica si ya se sembró.
func (k *KnownSet) Seeded() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.seeded
}

// HasSeen indica si el id ya es conocido.
func (k *KnownSet) HasSeen(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.ids[id]
	return ok
}

// MarkSeen añade el id y devuelve true solo si no estaba.
// Comprobar y marcar en una sola operación evita notificar dos veces la misma lead.
func (k *KnownSet) MarkSeen(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.ids[id]; ok {
		return false
	}
	k.ids[id] = struct{}{}
	return true
}

// Len número de ids conocidos.
func (k *KnownSet) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.ids)
}
