package notifications

import (
	"context"
	"sync"
)

// MemoryStorage Storage en memoria: tests y ejecuciones sin persistencia.
type MemoryStorage struct {
	mu    sync.Mutex
	items []Notification
}

// NewMemoryStorage crea el storage con un contenido inicial opcional.
func NewMemoryStorage(initial ...Notification) *MemoryStorage {
	return &MemoryStorage{items: append([]Notification(nil), initial...)}
}

func (m *MemoryStorage) Load(_ context.Context) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.items...), nil
}

func (m *MemoryStorage) Save(_ context.Context, list []Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]Notification(nil), list...)
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}
